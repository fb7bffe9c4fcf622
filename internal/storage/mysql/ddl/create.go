// Package ddl renders MySQL DDL from the generic ddl.TableDef model using
// backtick-quoted identifiers and CREATE TABLE IF NOT EXISTS.
package ddl

import (
	"context"
	"strings"

	gddl "bronze/internal/ddl"
	"bronze/internal/storage"
)

var style = gddl.Style{
	Dialect:    "mysql ddl",
	Quote:      func(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" },
	KeyNotNull: true,
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return style.CreateIfNotExists(t)
}

// MapType maps a logical type into a MySQL column type. Strings default to
// TEXT since source paths and column names have no fixed bound.
func MapType(kind string) string { return dialect.MapType(kind) }

var dialect = gddl.Dialect{
	Types: map[string]string{
		gddl.TypeString:    "TEXT",
		gddl.TypeBigint:    "BIGINT",
		gddl.TypeDouble:    "DOUBLE",
		gddl.TypeBool:      "BOOLEAN",
		gddl.TypeTimestamp: "DATETIME(6)",
		gddl.TypeBlob:      "LONGBLOB",
		"date":             "DATE",
	},
	Fallback: "TEXT",
}

// EnsureTable creates the MySQL table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string, fields []gddl.Field) error {
	sql, err := BuildCreateTableSQL(gddl.Resolve(table, fields, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
