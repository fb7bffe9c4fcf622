// Package ddl renders SQLite DDL from the generic ddl.TableDef model:
// double-quoted identifiers, CREATE TABLE IF NOT EXISTS, raw DEFAULT
// expressions and a separate PRIMARY KEY table constraint.
package ddl

import (
	"strings"

	gddl "bronze/internal/ddl"
)

var style = gddl.Style{Dialect: "sqlite ddl", Quote: QuoteIdent}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk1", "pk2")
//	);
//
// A dotted FQN ("main.events") has each segment quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return style.CreateIfNotExists(t)
}

// QuoteIdent quotes one identifier, doubling embedded quotes. Column names
// are taken verbatim, so leading or trailing spaces survive.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each dot-separated segment of a table name.
func QuoteFQN(fqn string) string { return style.QuoteFQN(fqn) }
