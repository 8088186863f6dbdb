package config

import "os"

// GetEnvOrDefault returns the environment variable value or a fallback when unset
func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
