// Package repository implements the data access layer for the application.
//
// Repositories return raw store errors (including gorm.ErrRecordNotFound);
// classification into application error codes happens once, in the service
// layer.
package repository

import (
	"strings"
)

// IsUniqueViolation checks if a DB error is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
