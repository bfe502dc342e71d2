package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/storage"
)

func newImageFixture(t *testing.T) (*fixture, *storage.MockStorageService, ImageStorageService) {
	t.Helper()
	f := newFixture(t, nil)
	blobs, err := storage.NewMockStorageService("http://localhost:8080/", t.TempDir())
	require.NoError(t, err)
	return f, blobs, NewImageStorageService(f.listings, blobs, 10*time.Minute)
}

func TestImageStorageService_UploadFlow(t *testing.T) {
	f, blobs, svc := newImageFixture(t)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)

	url, key, expiresAt, err := svc.GetUploadURL(ctx, "owner", l.ID, "tractor.png", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/api/v1/upload/"))
	assert.True(t, strings.HasPrefix(key, "listings/"+l.ID+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Greater(t, expiresAt, time.Now().Unix())

	_, err = svc.ConfirmImage(ctx, "owner", l.ID, key)
	assert.ErrorIs(t, err, ErrInvalidInput, "nothing uploaded yet")

	require.NoError(t, blobs.SaveFile(key, strings.NewReader("png-bytes")))
	updated, err := svc.ConfirmImage(ctx, "owner", l.ID, key)
	require.NoError(t, err)
	assert.Equal(t, key, updated.ImageRef)

	// Replacing the image removes the previous blob.
	_, second, _, err := svc.GetUploadURL(ctx, "owner", l.ID, "tractor2.jpg", "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, blobs.SaveFile(second, strings.NewReader("jpg-bytes")))
	_, err = svc.ConfirmImage(ctx, "owner", l.ID, second)
	require.NoError(t, err)

	exists, _, err := blobs.FileExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	download, _, err := svc.GetDownloadURL(ctx, second)
	require.NoError(t, err)
	assert.Contains(t, download, "/api/v1/download/")
}

func TestImageStorageService_Validation(t *testing.T) {
	f, _, svc := newImageFixture(t)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)

	_, _, _, err := svc.GetUploadURL(ctx, "owner", l.ID, "doc.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, _, err = svc.GetUploadURL(ctx, "alice", l.ID, "a.png", "image/png")
	assert.ErrorIs(t, err, ErrInvalidActor)

	_, err = svc.ConfirmImage(ctx, "owner", l.ID, "listings/other/a.png")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.GetDownloadURL(ctx, "users/secret.png")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
