// Package repository contains data access logic separated from HTTP
// handlers. This file defines error values reused across multiple
// repositories. These sentinels let handlers distinguish failure
// scenarios: ErrNotFound maps to 404, ErrNotAvailable to 409.
// Anything else is a storage failure the handler surfaces as 500.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotAvailable is returned by the cart when the product exists but
// its status is not Available.
var ErrNotAvailable = errors.New("product not available")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062). The pre-write existence probes are best effort; the
// unique indexes are authoritative and surface through this check when
// concurrent writes race.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
