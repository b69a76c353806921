package db

import "strings"

// IsUniqueViolation reports whether err looks like a unique-constraint hit.
// With a constraintName it matches that constraint specifically; otherwise it
// matches any duplicate-key failure. String matching keeps it working across
// the postgres and sqlite drivers the repositories run against.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
