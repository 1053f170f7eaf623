package sqliteutil

import (
	"database/sql"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if necessary) a sqlite database at dbpath and
// applies the given schema. Re-applying a schema to an existing
// database is fine, "already exists" errors are ignored.
func OpenDB(schema, dbpath string) (*sql.DB, error) {
	if dbpath != ":memory:" {
		_, statErr := os.Stat(dbpath)
		if os.IsNotExist(statErr) {
			f, err := os.Create(dbpath)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, err
	}

	return db, nil
}
