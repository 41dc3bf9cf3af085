//go:build !sqlite

package storage

import "fmt"

func newSQLiteStore(_ string) (Store, error) {
	return nil, fmt.Errorf("sqlite store requires building with -tags sqlite")
}

// DefaultStoreKind names the backend used when none is configured.
func DefaultStoreKind() string { return "memory" }
