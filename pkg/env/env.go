package env

import "os"

// Get reads key from the process environment. Unset and empty are treated
// the same and return fallback.
func Get(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
