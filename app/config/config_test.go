package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, DriverBadger, cfg.StoreDriver)
	assert.Equal(t, "data/badger", cfg.BadgerPath)
	assert.Equal(t, "postboard", cfg.MongoDatabase)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"accounts.google.com", "https://accounts.google.com"}, cfg.TrustedIssuers)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(30<<20), cfg.MaxBodyBytes)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADDR", ":8080")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "11")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nADDR=:7000\n"), 0644))
	t.Setenv("ADDR", ":9000")
	// godotenv sets JWT_SECRET through os.Setenv; register it so it is restored
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing secret", env: map[string]string{}, wantErr: "JWT_SECRET is required"},
		{name: "weak bcrypt cost", env: map[string]string{"BCRYPT_COST": "4"}, wantErr: "BCRYPT_COST must be at least 10"},
		{name: "bad bcrypt cost", env: map[string]string{"BCRYPT_COST": "lots"}, wantErr: "invalid BCRYPT_COST"},
		{name: "bad ttl", env: map[string]string{"TOKEN_TTL": "soon"}, wantErr: "invalid TOKEN_TTL"},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}, wantErr: `unknown STORE_DRIVER "sqlite"`},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "invalid LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "s3cret")
			if tt.name == "missing secret" {
				t.Setenv("JWT_SECRET", "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestBadgerPath(t *testing.T) {
	t.Setenv("BADGER_PATH", "/var/lib/postboard")
	assert.Equal(t, "/var/lib/postboard", BadgerPath())
}
