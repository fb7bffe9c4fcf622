// Package ddl renders SQL Server DDL from the generic ddl.TableDef model.
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the statement is wrapped in an
// IF OBJECT_ID(...) IS NULL guard.
package ddl

import (
	"fmt"
	"strings"

	gddl "bronze/internal/ddl"
)

// BuildCreateTableSQL returns a guarded T-SQL script:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL] [DEFAULT expr],
//	    PRIMARY KEY ([pk1])
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, lines, err := style.Lines(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		fqn,
		strings.Join(lines, ",\n    "),
	), nil
}

// style brackets identifiers, escaping closing brackets: weird]id -> [weird]]id].
var style = gddl.Style{
	Dialect: "mssql ddl",
	Quote:   func(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" },
}
