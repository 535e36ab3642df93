// Package config loads engine tuning from the environment, optionally
// seeded from a .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries the tunable knobs of the resolution engine and its
// collaborators.
type Config struct {
	// MaxDepth bounds recursive resolution. HIGHPER_MAX_DEPTH.
	MaxDepth int
	// Debug enables debug logging of compile and fallback events.
	// HIGHPER_DEBUG.
	Debug bool
	// PoolCapacity bounds each per-type recycler free list.
	// HIGHPER_POOL_CAPACITY.
	PoolCapacity int
}

// Load reads .env (if present) and populates a Config from environment
// variables. Call once at bootstrap.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist outside local development.
	_ = godotenv.Load(files...)

	return &Config{
		MaxDepth:     GetInt("HIGHPER_MAX_DEPTH", 64),
		Debug:        GetBool("HIGHPER_DEBUG", false),
		PoolCapacity: GetInt("HIGHPER_POOL_CAPACITY", 64),
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
