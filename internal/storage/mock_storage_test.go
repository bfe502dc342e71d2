package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStorage_RoundTrip(t *testing.T) {
	m, err := NewMockStorageService("http://localhost:8080/", t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	key := "listings/l1/tractor.jpg"

	exists, _, err := m.FileExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.SaveFile(key, strings.NewReader("jpeg-bytes")))

	exists, size, err := m.FileExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(len("jpeg-bytes")), size)

	rc, err := m.ReadFile(key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, m.DeleteFile(ctx, key))
	exists, _, err = m.FileExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, m.DeleteFile(ctx, key))
}

func TestMockStorage_URLs(t *testing.T) {
	m, err := NewMockStorageService("http://localhost:8080", t.TempDir())
	require.NoError(t, err)

	up, err := m.GeneratePresignedUploadURL(context.Background(), "listings/l1/a.jpg", "image/jpeg", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up, "http://localhost:8080/api/v1/upload/"))
	assert.Contains(t, up, "key=listings%2Fl1%2Fa.jpg")

	down, err := m.GeneratePresignedDownloadURL(context.Background(), "listings/l1/a.jpg", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(down, "http://localhost:8080/api/v1/download/"))
}

func TestMockStorage_RejectsEscapingKeys(t *testing.T) {
	m, err := NewMockStorageService("http://localhost:8080", t.TempDir())
	require.NoError(t, err)

	assert.Error(t, m.SaveFile("../../etc/passwd", strings.NewReader("x")))
	_, _, err = m.FileExists(context.Background(), "../outside")
	assert.Error(t, err)
}

func TestConfig_Expiration(t *testing.T) {
	assert.Equal(t, "15m0s", Config{}.Expiration().String())
	assert.Equal(t, "5m0s", Config{PresignedExpiration: "5m"}.Expiration().String())
}
