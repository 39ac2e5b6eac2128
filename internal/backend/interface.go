// Package backend selects and wires the persistence layer at startup.
package backend

import (
	"finsight/internal/services"
)

// Stores bundles the two store interfaces a backend must provide. The
// SQLite repository implements both on one handle; the memory backend
// does the same in-process.
type Stores interface {
	services.LedgerStore
	services.BudgetStore
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function
type Result struct {
	Stores  Stores
	Cleanup CleanupFunc
}

// Type represents the type of backend
type Type string

const (
	SQLiteType Type = "sqlite"
	MemoryType Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteType, MemoryType:
		return true
	default:
		return false
	}
}
