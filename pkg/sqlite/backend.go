// Package sqlite provides the public API for the SQLite ledger store.
// This package exposes the factory function for creating SQLite stores
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/mintfactory/internal/sqlite"
	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// Open creates a SQLite store and attaches it to config.DataDir.
// The caller must Close the store when done.
//
// Example:
//
//	store, err := sqlite.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".mintfactory-db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(config types.Config) (types.Store, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(config); err != nil {
		return nil, err
	}
	return b, nil
}
