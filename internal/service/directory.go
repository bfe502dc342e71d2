package service

import (
	"context"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/auth"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/repository"
)

type userGetter interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// firebaseDirectory resolves identities against Firebase Auth user records.
type firebaseDirectory struct {
	users userGetter
}

func NewFirebaseDirectory(client *auth.Client) PartyDirectory {
	return &firebaseDirectory{users: client}
}

func (d *firebaseDirectory) Lookup(ctx context.Context, id string) (*domain.Party, error) {
	logger.ExternalServiceCall("firebase-auth", "GetUser", "uid", id)
	rec, err := d.users.GetUser(ctx, id)
	logger.ExternalServiceResult("firebase-auth", "GetUser", err)
	if auth.IsUserNotFound(err) {
		return nil, fmt.Errorf("party %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p := &domain.Party{ID: id}
	if rec.UserInfo != nil {
		p.Name = rec.DisplayName
		p.Email = rec.Email
	}
	return p, nil
}

// StaticDirectory is an in-memory directory for local runs and tests.
type StaticDirectory struct {
	mu      sync.RWMutex
	parties map[string]domain.Party
}

func NewStaticDirectory(parties ...domain.Party) *StaticDirectory {
	d := &StaticDirectory{parties: make(map[string]domain.Party, len(parties))}
	for _, p := range parties {
		d.parties[p.ID] = p
	}
	return d
}

func (d *StaticDirectory) Put(p domain.Party) {
	d.mu.Lock()
	d.parties[p.ID] = p
	d.mu.Unlock()
}

func (d *StaticDirectory) Lookup(ctx context.Context, id string) (*domain.Party, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.parties[id]
	if !ok {
		return nil, fmt.Errorf("party %s: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}
