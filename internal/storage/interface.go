package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageInterface is the blob store for listing images. Clients upload and
// download directly through presigned URLs; the backend only signs URLs and
// checks that uploads landed.
type StorageInterface interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	// FileExists reports whether key holds an object, and its size.
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)
	DeleteFile(ctx context.Context, key string) error
}

// LocalFiles is implemented by backends whose blobs are served by this
// process (the mock). The HTTP side server uses it for upload/download.
type LocalFiles interface {
	SaveFile(key string, reader io.Reader) error
	ReadFile(key string) (io.ReadCloser, error)
}

const listingImageRoot = "listings/"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageExtension returns the extension stored for an accepted image
// content type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[contentType]
	return ext, ok
}

// ContentTypeOf maps a key's extension back to an image content type.
func ContentTypeOf(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

// ListingImagePrefix is the key prefix every image of a listing shares.
func ListingImagePrefix(listingID string) string {
	return listingImageRoot + listingID + "/"
}

// NewListingImageKey returns a fresh object key for an image of listingID.
func NewListingImageKey(listingID, ext string) string {
	return ListingImagePrefix(listingID) + uuid.NewString() + ext
}

// IsListingImageKey reports whether key is a well-formed listing image key:
// listings/<id>/<name> with no path traversal.
func IsListingImageKey(key string) bool {
	if !strings.HasPrefix(key, listingImageRoot) || path.Clean(key) != key {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(key, listingImageRoot), "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != "" && parts[0] != ".." && parts[1] != ".."
}
