package env

import "os"

// Get returns the value of the given environment variable or a fallback.
// Config loading uses it for the RENTARIDE_* variables that carry dev defaults.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
