package storage

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
)

// Config holds storage configuration
type Config struct {
	Type                string // "mock" or "firebase"
	MockDir             string // Directory for mock storage
	BaseURL             string // Server base URL for generating mock URLs
	Bucket              string // Firebase Storage bucket; empty means the app default
	PresignedExpiration string // e.g., "15m"
}

// Expiration parses PresignedExpiration, defaulting to 15 minutes.
func (c Config) Expiration() time.Duration {
	d, err := time.ParseDuration(c.PresignedExpiration)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// New builds the configured backend. app is only needed for "firebase".
func New(ctx context.Context, cfg Config, app *firebase.App) (StorageInterface, error) {
	switch cfg.Type {
	case "", "mock":
		return NewMockStorageService(cfg.BaseURL, cfg.MockDir)
	case "firebase":
		if app == nil {
			return nil, fmt.Errorf("firebase storage requires a firebase app")
		}
		return NewFirebaseStorage(ctx, app, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
