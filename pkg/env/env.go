// Package env reads process environment variables before the typed config is
// available, e.g. during logger bootstrap.
package env

import "os"

// Get looks up key in the environment, returning fallback when the variable
// is unset or empty.
func Get(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
