// Package app wires configuration into stores, repositories and services.
// Both the API server and the cronjob runner build on it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"farmhub-backend/internal/config"
	"farmhub-backend/internal/docstore"
	"farmhub-backend/internal/events"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/repository"
	"farmhub-backend/internal/repository/document"
	"farmhub-backend/internal/security"
	"farmhub-backend/internal/service"
	"farmhub-backend/internal/storage"
)

// Repositories groups the document-backed repositories.
type Repositories struct {
	Listings      repository.ListingRepository
	Bookings      repository.BookingRepository
	Channels      repository.ChannelRepository
	Notifications repository.NotificationRepository
}

// Services groups the business services.
type Services struct {
	Listing      service.ListingService
	Booking      service.BookingService
	Channel      service.ChannelService
	Notification service.NotificationService
	Image        service.ImageStorageService
}

// App holds every long-lived dependency of a process.
type App struct {
	Config    *config.Config
	Firebase  *firebase.App
	Store     docstore.Store
	Blobs     storage.StorageInterface
	Publisher events.Publisher
	Verifier  security.Verifier
	Tokens    security.TokenManager // nil unless auth.provider is jwt
	Repos     Repositories
	Services  Services

	db *sql.DB
}

// New builds the application graph from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.UsesFirebase() {
		fbApp, err := newFirebaseApp(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.Firebase = fbApp
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = store

	a.Repos = Repositories{
		Listings:      document.NewListingRepository(store),
		Bookings:      document.NewBookingRepository(store),
		Channels:      document.NewChannelRepository(store),
		Notifications: document.NewNotificationRepository(store),
	}

	if err := a.initAuth(ctx); err != nil {
		a.Close()
		return nil, err
	}

	blobs, err := storage.New(ctx, storage.Config{
		Type:                cfg.Storage.Type,
		MockDir:             cfg.Storage.UploadDir,
		BaseURL:             cfg.Storage.BaseURL,
		Bucket:              cfg.Firebase.StorageBucket,
		PresignedExpiration: cfg.Storage.PresignedExpiration,
	}, a.Firebase)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	a.Blobs = blobs

	a.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		logger.Info("Publishing booking events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		pub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Retries)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		a.Publisher = pub
	}

	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid API key not set, emails are disabled")
		emailSvc = service.NewNoopEmailService()
	}

	directory, err := a.partyDirectory(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	booking := service.NewBookingService(a.Repos.Listings, a.Repos.Bookings, a.Repos.Notifications, emailSvc, directory, a.Publisher)
	a.Services = Services{
		Listing:      service.NewListingService(a.Repos.Listings, a.Repos.Bookings, a.Repos.Notifications, emailSvc, directory),
		Booking:      booking,
		Channel:      service.NewChannelService(a.Repos.Bookings, a.Repos.Channels, booking),
		Notification: service.NewNotificationService(a.Repos.Notifications),
		Image:        service.NewImageStorageService(a.Repos.Listings, blobs, storage.Config{PresignedExpiration: cfg.Storage.PresignedExpiration}.Expiration()),
	}
	return a, nil
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	logger.Info("Initializing Firebase", "project_id", cfg.Firebase.ProjectID)
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Firebase.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase: %w", err)
	}
	return fbApp, nil
}

func (a *App) openStore(ctx context.Context) (docstore.Store, error) {
	cfg := a.Config
	switch cfg.Store.Backend {
	case "memory":
		logger.Warn("Using in-memory document store; data is lost on restart")
		return docstore.NewMemoryStore(), nil
	case "postgres":
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Info("Database connection established")
		if cfg.Database.Migrate {
			if err := docstore.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
			logger.Info("Database migrations applied")
		}
		a.db = db
		return docstore.NewPostgresStore(db), nil
	case "firestore":
		client, err := a.Firebase.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("init firestore: %w", err)
		}
		logger.Info("Using Firestore document store", "project_id", cfg.Firebase.ProjectID)
		return docstore.NewFirestoreStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func (a *App) initAuth(ctx context.Context) error {
	if a.Config.Auth.Provider == "firebase" {
		client, err := a.Firebase.Auth(ctx)
		if err != nil {
			return fmt.Errorf("init firebase auth: %w", err)
		}
		a.Verifier = security.NewFirebaseVerifier(client)
		return nil
	}
	tm := security.NewTokenManager(a.Config.JWT.Secret, a.Config.AccessTokenTTL(), a.Config.RefreshTokenTTL())
	a.Tokens = tm
	a.Verifier = tm
	return nil
}

func (a *App) partyDirectory(ctx context.Context) (service.PartyDirectory, error) {
	if a.Firebase == nil {
		return service.NewStaticDirectory(), nil
	}
	client, err := a.Firebase.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return service.NewFirebaseDirectory(client), nil
}

// Ping checks the backing database, if there is one.
func (a *App) Ping(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.PingContext(ctx)
}

// Close releases the store and the event publisher.
func (a *App) Close() error {
	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
