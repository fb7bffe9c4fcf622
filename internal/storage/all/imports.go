// Package all registers every built-in storage backend with the storage
// factory. Import it for side effects:
//
//	import _ "bronze/internal/storage/all"
//
// after which storage.New and storage.WriteReport accept the kinds
// "sqlite", "postgres", "mssql" and "mysql".
package all

import (
	_ "bronze/internal/storage/mssql"
	_ "bronze/internal/storage/mysql"
	_ "bronze/internal/storage/postgres"
	_ "bronze/internal/storage/sqlite"
)
