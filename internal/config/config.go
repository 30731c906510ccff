package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Stripe StripeConfig
	Admin  AdminConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig carries everything the record store needs to pick a backend.
// The store receives this at construction; nothing inside the store reads
// the environment directly, so backend choice is testable by substitution.
type StoreConfig struct {
	KVURL      string
	KVToken    string
	DataDir    string
	ReadOnlyFS bool
}

// RemoteConfigured reports whether the remote key-value backend is eligible.
// Both the endpoint and the token must be present.
func (s StoreConfig) RemoteConfigured() bool {
	return s.KVURL != "" && s.KVToken != ""
}

type StripeConfig struct {
	SecretKey string
}

// AdminConfig guards the read-only admin listing endpoints. An empty token
// disables them entirely.
type AdminConfig struct {
	Token string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			KVURL:      getEnv("KV_REST_API_URL", ""),
			KVToken:    getEnv("KV_REST_API_TOKEN", ""),
			DataDir:    getEnv("DATA_DIR", "data"),
			ReadOnlyFS: getEnvBool("READ_ONLY_FS", false),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
