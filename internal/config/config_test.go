package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_RequiresStoreSecret(t *testing.T) {
	t.Setenv("EWASTE_STORE_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("EWASTE_STORE_SECRET", "secret")
	t.Setenv("EWASTE_API_BASE_URL", "https://api.ewaste.example/api")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "https://api.ewaste.example/api", cfg.APIBaseURL)
	assert.Equal(t, "ewaste.db", cfg.DBPath)
	assert.Equal(t, "credentials.dat", cfg.CredentialPath)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "@every 6h", cfg.SyncSchedule)
	assert.NotEqual(t, [32]byte{}, cfg.StoreKey)
}
