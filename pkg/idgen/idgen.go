// Package idgen provides ID generation utilities for the application.
// It encapsulates the ID generation implementation, making it easy to change
// the underlying ID generation strategy in the future.
package idgen

import (
	"strings"

	"github.com/rs/xid"
)

// NewID generates a new globally unique, sortable identifier.
// Returns a 20-character string using xid format.
func NewID() string {
	return xid.New().String()
}

// NewRunID generates a unique ID for one dataset generation run.
func NewRunID() string {
	return "run_" + NewID()
}

// NewRequestID generates a unique ID for generator request tracking.
func NewRequestID(stage string) string {
	if stage == "" {
		return NewID()
	}
	return strings.ToLower(stage) + "-" + NewID()
}

// IsValid reports whether id (without prefix) is a well-formed xid.
func IsValid(id string) bool {
	if i := strings.LastIndexAny(id, "_-"); i >= 0 {
		id = id[i+1:]
	}
	_, err := xid.FromString(id)
	return err == nil
}
