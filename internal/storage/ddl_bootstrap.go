package storage

import (
	"context"
	"fmt"
	"sync"

	"bronze/internal/ddl"
)

// DDLBootstrapper maps a backend-neutral table layout to the backend's
// dialect and applies it via repo.Exec (typically CREATE TABLE IF NOT EXISTS).
//
// Backends register their implementation for a storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, fields []ddl.Field) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates table with the given layout on the backend registered
// for kind. It is idempotent.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, fields []ddl.Field) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, table, fields)
}
