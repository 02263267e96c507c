package config

import (
	"crypto/sha256"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultHTTPTimeout = 60 * time.Second

// Config holds all client configuration.
type Config struct {
	APIBaseURL     string
	DBPath         string
	CredentialPath string
	StoreKey       [32]byte
	HTTPTimeout    time.Duration
	SyncSchedule   string
}

// Load reads configuration from a .env file (if present) and the
// environment. EWASTE_STORE_SECRET is required: the credential store is
// encrypted at rest and cannot open without it.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	secret := os.Getenv("EWASTE_STORE_SECRET")
	if secret == "" {
		return nil, errors.New("no EWASTE_STORE_SECRET provided")
	}

	cfg := &Config{
		APIBaseURL:     getEnv("EWASTE_API_BASE_URL", "http://localhost:3000/api"),
		DBPath:         getEnv("EWASTE_DB_PATH", "ewaste.db"),
		CredentialPath: getEnv("EWASTE_CREDENTIALS_PATH", "credentials.dat"),
		StoreKey:       sha256.Sum256([]byte(secret)),
		HTTPTimeout:    defaultHTTPTimeout,
		SyncSchedule:   getEnv("EWASTE_SYNC_SCHEDULE", "@every 6h"),
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
