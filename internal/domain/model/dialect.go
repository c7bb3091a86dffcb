package model

import (
	"fmt"
	"strings"
)

// Dialect identifies a database capability registered with the director.
type Dialect string

const (
	DialectPostgres Dialect = "postgre_sql_database"
	DialectMSSQL    Dialect = "ms_sql_database"
	DialectSQLite   Dialect = "sqlite_database"
	DialectMongo    Dialect = "mongo_database"
)

var dialectAliases = map[string]Dialect{
	"postgres":              DialectPostgres,
	"postgresql":            DialectPostgres,
	"pgx":                   DialectPostgres,
	string(DialectPostgres): DialectPostgres,
	"mssql":                 DialectMSSQL,
	"sqlserver":             DialectMSSQL,
	string(DialectMSSQL):    DialectMSSQL,
	"sqlite":                DialectSQLite,
	"sqlite3":               DialectSQLite,
	string(DialectSQLite):   DialectSQLite,
	"mongo":                 DialectMongo,
	"mongodb":               DialectMongo,
	string(DialectMongo):    DialectMongo,
}

func ParseDialect(s string) (Dialect, error) {
	if dialect, ok := dialectAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return dialect, nil
	}

	return "", fmt.Errorf("%w: unknown dialect %q", ErrInvalidParameter, s)
}

// IsSQL reports whether d is served by the SQL query builder.
func (d Dialect) IsSQL() bool {
	return d == DialectPostgres || d == DialectMSSQL || d == DialectSQLite
}

func (d Dialect) String() string {
	return string(d)
}
