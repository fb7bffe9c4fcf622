package ddl

import gddl "bronze/internal/ddl"

var dialect = gddl.Dialect{
	Types: map[string]string{
		gddl.TypeString:    "NVARCHAR(MAX)",
		gddl.TypeBigint:    "BIGINT",
		gddl.TypeDouble:    "FLOAT",
		gddl.TypeBool:      "BIT",
		gddl.TypeTimestamp: "DATETIME2",
		gddl.TypeBlob:      "VARBINARY(MAX)",
		"date":             "DATE",
		"decimal":          "DECIMAL(38, 10)",
		"numeric":          "DECIMAL(38, 10)",
		"uuid":             "UNIQUEIDENTIFIER",
	},
	Fallback: "NVARCHAR(MAX)",
}

// MapType maps a logical type into a SQL Server column type.
func MapType(kind string) string { return dialect.MapType(kind) }
