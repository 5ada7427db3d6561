package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load(".env")
}

const DefaultAPIURL = "https://financial-backend-sigma.vercel.app/fetch_data"

func Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetDefault(key, defaultVal string) string {
	if v := Get(key); v != "" {
		return v
	}
	return defaultVal
}

func GetBool(key, defaultVal string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		v = defaultVal
	}
	return v == "1" || v == "true" || v == "yes"
}

func GetDuration(key string, defaultVal time.Duration) time.Duration {
	v := Get(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

type Config struct {
	APIURL      string
	RecordsPath string // JSONPath to the record array; empty when the body is the array
	Port        string
	DataDir     string
	HTTPTimeout time.Duration
	Trace       bool
	Offline     bool
	AdminAPIKey string
}

// Load reads the configuration from the environment (and .env).
func Load() *Config {
	return &Config{
		APIURL:      GetDefault("FINTABLE_API_URL", DefaultAPIURL),
		RecordsPath: Get("FINTABLE_RECORDS_PATH"),
		Port:        GetDefault("PORT", "8000"),
		DataDir:     GetDefault("FINTABLE_DATA_DIR", "data"),
		HTTPTimeout: GetDuration("FINTABLE_HTTP_TIMEOUT", 30*time.Second),
		Trace:       GetBool("FINTABLE_TRACE", "false"),
		Offline:     GetBool("FINTABLE_OFFLINE", "false"),
		AdminAPIKey: Get("ADMIN_API_KEY"),
	}
}

// SnapshotPath is the sqlite file holding the last successful load.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "snapshots.db")
}
