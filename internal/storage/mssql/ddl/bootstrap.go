package ddl

import (
	"context"

	gddl "bronze/internal/ddl"
	"bronze/internal/storage"
)

// EnsureTable creates the SQL Server table if it does not already exist. The
// generated script is guarded by IF OBJECT_ID(...) IS NULL, so repeated calls
// are harmless.
func EnsureTable(ctx context.Context, repo storage.Repository, table string, fields []gddl.Field) error {
	sql, err := BuildCreateTableSQL(gddl.Resolve(table, fields, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
