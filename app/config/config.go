package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"postboard/app/auth"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DriverBadger = "badger"
	DriverMongo  = "mongo"

	// MinBcryptCost is the lowest accepted password hashing cost.
	MinBcryptCost = 10
)

// Config holds the runtime settings of the server.
type Config struct {
	Addr            string
	StoreDriver     string
	BadgerPath      string
	MongoURI        string
	MongoDatabase   string
	JWTSecret       string
	TokenTTL        time.Duration
	BcryptCost      int
	TrustedIssuers  []string
	CORSOrigins     []string
	MaxBodyBytes    int64
	LogLevel        logrus.Level
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory, or the files given, is loaded first when present;
// variables already set win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load env file")
	}

	cfg := &Config{
		Addr:          getenv("ADDR", ":5000"),
		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", DriverBadger)),
		BadgerPath:    getenv("BADGER_PATH", "data/badger"),
		MongoURI:      getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGODB_DATABASE", "postboard"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TrustedIssuers: splitList(getenv("TRUSTED_ISSUERS",
			strings.Join(auth.GoogleIssuers, ","))),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = parseInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	maxBody, err := parseInt("MAX_BODY_BYTES", 30<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.LogLevel, err = logrus.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return nil, errors.Wrap(err, "invalid LOG_LEVEL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.BcryptCost < MinBcryptCost {
		return errors.Errorf("BCRYPT_COST must be at least %d, got %d", MinBcryptCost, c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch c.StoreDriver {
	case DriverBadger:
		if c.BadgerPath == "" {
			return errors.New("BADGER_PATH is required for the badger store")
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGODB_URI and MONGODB_DATABASE are required for the mongo store")
		}
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getenv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	value := getenv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// BadgerPath returns the configured badger directory without requiring the
// rest of the configuration to be valid.
func BadgerPath() string {
	_ = godotenv.Load()
	return getenv("BADGER_PATH", "data/badger")
}
