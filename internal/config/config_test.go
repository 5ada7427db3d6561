package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"FINTABLE_API_URL", "FINTABLE_RECORDS_PATH", "PORT", "FINTABLE_DATA_DIR",
		"FINTABLE_HTTP_TIMEOUT", "FINTABLE_TRACE", "FINTABLE_OFFLINE", "ADMIN_API_KEY"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, DefaultAPIURL, c.APIURL)
	assert.Equal(t, "", c.RecordsPath)
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout)
	assert.False(t, c.Trace)
	assert.False(t, c.Offline)
	assert.Equal(t, filepath.Join("data", "snapshots.db"), c.SnapshotPath())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FINTABLE_API_URL", " http://localhost:5000/fetch_data ")
	t.Setenv("FINTABLE_RECORDS_PATH", "$.data")
	t.Setenv("FINTABLE_HTTP_TIMEOUT", "5")
	t.Setenv("FINTABLE_TRACE", "yes")
	t.Setenv("FINTABLE_DATA_DIR", "/tmp/ft")
	c := Load()
	assert.Equal(t, "http://localhost:5000/fetch_data", c.APIURL)
	assert.Equal(t, "$.data", c.RecordsPath)
	assert.Equal(t, 5*time.Second, c.HTTPTimeout)
	assert.True(t, c.Trace)
	assert.Equal(t, filepath.Join("/tmp/ft", "snapshots.db"), c.SnapshotPath())
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_TIMEOUT", "1m30s")
	assert.Equal(t, 90*time.Second, GetDuration("X_TIMEOUT", time.Second))
	t.Setenv("X_TIMEOUT", "soon")
	assert.Equal(t, time.Second, GetDuration("X_TIMEOUT", time.Second))
}
