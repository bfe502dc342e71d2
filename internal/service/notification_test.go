package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/repository"
)

func TestNotificationService_Pagination(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewNotificationService(f.notes)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, f.notes.Create(ctx, &domain.Notification{UserID: "alice", Title: "t"}))
	}

	page, total, err := svc.GetNotifications(ctx, "alice", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(25), total)
	assert.Len(t, page, 20)

	page, _, err = svc.GetNotifications(ctx, "alice", 2, 20)
	require.NoError(t, err)
	assert.Len(t, page, 5)

	page, total, err = svc.GetNotifications(ctx, "bob", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewNotificationService(f.notes)
	ctx := context.Background()
	n := &domain.Notification{UserID: "alice", Title: "t"}
	require.NoError(t, f.notes.Create(ctx, n))

	assert.ErrorIs(t, svc.MarkAsRead(ctx, "bob", n.ID), repository.ErrNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, "alice", n.ID))

	page, _, err := svc.GetNotifications(ctx, "alice", 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, page[0].IsRead)
}

func TestNotificationService_PageSizeCapped(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewNotificationService(f.notes)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		require.NoError(t, f.notes.Create(ctx, &domain.Notification{UserID: "alice", Title: "t"}))
	}
	page, total, err := svc.GetNotifications(ctx, "alice", 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int32(120), total)
	assert.Len(t, page, 100)

	_, _, err = svc.GetNotifications(ctx, "", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, "alice", ""), ErrInvalidInput)
}
