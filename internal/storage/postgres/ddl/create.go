// Package ddl renders Postgres DDL for a generic ddl.TableDef.
package ddl

import (
	"strings"

	gddl "bronze/internal/ddl"
)

// Primary-key columns are always NOT NULL and the PRIMARY KEY clause is
// sorted, so the same fields always render the same statement.
var style = gddl.Style{
	Dialect:    "postgres ddl",
	Quote:      quoteIdent,
	KeyNotNull: true,
	SortKey:    true,
}

// BuildCreateTableSQL builds a deterministic Postgres CREATE TABLE IF NOT
// EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return style.CreateIfNotExists(t)
}

// quoteIdent quotes one identifier segment:
//
//	quoteIdent(`pcv`)        => `"pcv"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(f string) string { return style.QuoteFQN(f) }
