package ddl

import (
	"context"

	gddl "bronze/internal/ddl"
	"bronze/internal/storage"
)

// EnsureTable creates the Postgres table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string, fields []gddl.Field) error {
	sql, err := BuildCreateTableSQL(gddl.Resolve(table, fields, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
