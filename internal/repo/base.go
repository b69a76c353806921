package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories (users, otp, rbac, activity)
// so they share a single way of binding queries to the request context.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a GORM handle, which may itself be transaction-scoped.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle bound to ctx; a nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
