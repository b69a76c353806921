package env

import "os"

// Get reads an environment variable, falling back when it is unset or empty.
// Used by components that boot before the envconfig-backed config is loaded.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
