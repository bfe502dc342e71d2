package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 50051
jwt:
  secret: "0123456789abcdef0123456789abcdef"
storage:
  upload_dir: ./uploads
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "jwt", cfg.Auth.Provider)
	assert.Equal(t, "mock", cfg.Storage.Type)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Storage.BaseURL)
	assert.Equal(t, "0 */10 * * * *", cfg.Scheduler.RepairLockedListings)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 60, cfg.JWT.AccessTokenExpiry)
	assert.False(t, cfg.UsesFirebase())
	assert.Equal(t, ":50051", cfg.GetServerAddress())
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"BadPort", "server:\n  port: 0\n"},
		{"ShortSecret", "server:\n  port: 1\njwt:\n  secret: short\nstorage:\n  upload_dir: x\n"},
		{"PostgresWithoutHost", minimalYAML + "store:\n  backend: postgres\n"},
		{"FirestoreWithoutProject", minimalYAML + "store:\n  backend: firestore\n"},
		{"UnknownBackend", minimalYAML + "store:\n  backend: mongo\n"},
		{"UnknownProvider", minimalYAML + "auth:\n  provider: saml\n"},
		{"SendGridWithoutFrom", minimalYAML + "sendgrid:\n  api_key: SG.x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "farmhub")
	t.Setenv("DB_NAME", "farmhub")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres://farmhub:@db.internal:5432/farmhub?sslmode=disable", cfg.GetDatabaseConnectionString())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "farmhub.bookings", cfg.Kafka.Topic)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50051, cfg.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/farmhub.api.v1.Marketplace/ListListings"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/farmhub.api.v1.Marketplace/AcceptRequest"))
	assert.Equal(t, SecurityRefresh, GetSecurityLevel("/farmhub.api.v1.AuthService/RefreshToken"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/unknown.Service/Method"))
}
