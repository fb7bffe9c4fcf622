package ddl

import gddl "bronze/internal/ddl"

var dialect = gddl.Dialect{
	Types: map[string]string{
		gddl.TypeString:    "TEXT",
		gddl.TypeBigint:    "BIGINT",
		gddl.TypeDouble:    "DOUBLE PRECISION",
		gddl.TypeBool:      "BOOLEAN",
		gddl.TypeTimestamp: "TIMESTAMPTZ",
		gddl.TypeBlob:      "BYTEA",
		"date":             "DATE",
	},
	Fallback: "TEXT",
}

// MapType maps a logical type into a Postgres type; unknown kinds become TEXT.
func MapType(kind string) string { return dialect.MapType(kind) }
