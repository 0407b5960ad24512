package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres unique violation. With
// a constraintName it matches that specific index, which is how the services
// map collisions like a re-registered email (ux_users_email) or a duplicate
// vote to a conflict response instead of a 500.
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
