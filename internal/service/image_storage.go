package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/repository"
	"farmhub-backend/internal/storage"
)

type imageStorageService struct {
	listingRepo repository.ListingRepository
	store       storage.StorageInterface
	expiresIn   time.Duration
}

func NewImageStorageService(listingRepo repository.ListingRepository, store storage.StorageInterface, expiresIn time.Duration) ImageStorageService {
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	return &imageStorageService{listingRepo: listingRepo, store: store, expiresIn: expiresIn}
}

func (s *imageStorageService) ownedListing(ctx context.Context, ownerID, listingID string) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != ownerID {
		return nil, ErrInvalidActor
	}
	return listing, nil
}

func (s *imageStorageService) GetUploadURL(ctx context.Context, ownerID, listingID, filename, contentType string) (string, string, int64, error) {
	logger.EnterMethod("imageStorageService.GetUploadURL", "ownerID", ownerID, "listingID", listingID, "filename", filename)

	ext, ok := storage.ImageExtension(contentType)
	if !ok {
		return "", "", 0, fmt.Errorf("%w: unsupported content type %q", ErrInvalidInput, contentType)
	}
	if _, err := s.ownedListing(ctx, ownerID, listingID); err != nil {
		return "", "", 0, err
	}

	key := storage.NewListingImageKey(listingID, ext)
	expiresAt := time.Now().Add(s.expiresIn)

	url, err := s.store.GeneratePresignedUploadURL(ctx, key, contentType, s.expiresIn)
	if err != nil {
		logger.ExitMethodWithError("imageStorageService.GetUploadURL", err, false)
		return "", "", 0, fmt.Errorf("generate upload url: %w", err)
	}
	logger.ExitMethod("imageStorageService.GetUploadURL", "key", key)
	return url, key, expiresAt.Unix(), nil
}

func (s *imageStorageService) ConfirmImage(ctx context.Context, ownerID, listingID, key string) (*domain.Listing, error) {
	logger.EnterMethod("imageStorageService.ConfirmImage", "ownerID", ownerID, "listingID", listingID, "key", key)

	if !storage.IsListingImageKey(key) || !strings.HasPrefix(key, storage.ListingImagePrefix(listingID)) {
		return nil, fmt.Errorf("%w: key does not belong to listing", ErrInvalidInput)
	}
	listing, err := s.ownedListing(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}

	exists, size, err := s.store.FileExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check upload: %w", err)
	}
	if !exists || size == 0 {
		return nil, fmt.Errorf("%w: image has not been uploaded", ErrInvalidInput)
	}

	previous := listing.ImageRef
	if err := s.listingRepo.SetImage(ctx, listingID, key); err != nil {
		return nil, fmt.Errorf("set listing image: %w", err)
	}
	listing.ImageRef = key

	if previous != "" && previous != key {
		if err := s.store.DeleteFile(ctx, previous); err != nil {
			logger.Warn("Failed to delete replaced listing image", "listing_id", listingID, "key", previous, "error", err)
		}
	}
	logger.ExitMethod("imageStorageService.ConfirmImage")
	return listing, nil
}

func (s *imageStorageService) GetDownloadURL(ctx context.Context, key string) (string, int64, error) {
	if !storage.IsListingImageKey(key) {
		return "", 0, fmt.Errorf("%w: unknown image key", ErrInvalidInput)
	}
	expiresAt := time.Now().Add(s.expiresIn)
	url, err := s.store.GeneratePresignedDownloadURL(ctx, key, s.expiresIn)
	if err != nil {
		return "", 0, fmt.Errorf("generate download url: %w", err)
	}
	return url, expiresAt.Unix(), nil
}
