package datastore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported values for the dbtype argument of NewDB.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// NewDB takes arguments for db type and conn string and returns an open, pinged handle
func NewDB(dbtype string, connstr string) (*sql.DB, error) {
	if dbtype != Postgres && dbtype != SQLite {
		return nil, fmt.Errorf("unsupported database type %q", dbtype)
	}

	db, openError := sql.Open(dbtype, connstr)
	if openError != nil {
		return nil, fmt.Errorf("error opening connection -> %w", openError)
	}

	if dbtype == SQLite {
		// An in-memory database lives and dies with its connection.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply sqlite pragma -> %w", err)
		}
	}

	if pingError := db.Ping(); pingError != nil {
		db.Close()
		return nil, fmt.Errorf("could not establish connection with database -> %w", pingError)
	}

	return db, nil
}

// BuildDBConnStr builds a PostgreSQL connection string
func BuildDBConnStr(password, user, host, dbname, sslmode string) string {
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s", user, password, host, dbname, sslmode)
}

// Rebind rewrites $N placeholders to ? for drivers that want them. Queries in
// this package number their placeholders in order and use each once.
func Rebind(dbtype, query string) string {
	if dbtype != SQLite || !strings.Contains(query, "$") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
