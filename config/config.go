package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds relay runtime configuration parsed from environment
// variables.
type Config struct {
	HTTPAddr         string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	ShutdownTimeout  time.Duration
	LogLevel         string
}

// FromEnv builds Config with defaults, overridden by environment
// variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:         envOrDefault("RELAY_ADDR", ":8080"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		ShutdownTimeout:  envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
