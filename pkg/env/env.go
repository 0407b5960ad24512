package env

import "os"

// Get reads an environment variable with a fallback. Used for the few knobs
// read before config.Load runs, such as the logger's output format.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
