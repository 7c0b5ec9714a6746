package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries runs the named queries of queries/*.sql. Queries are written
// with ? placeholders and rebound for the connection's dialect.
type Queries struct {
	dot *dotsql.DotSql
	db  *sqlx.DB
	ext sqlx.Ext
}

// LoadQueries parses every embedded query file.
func LoadQueries(db *sqlx.DB) (*Queries, error) {
	var combined strings.Builder

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		combined.Write(content)
		combined.WriteString("\n")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combined.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}
	return &Queries{dot: dot, db: db, ext: db}, nil
}

func (q *Queries) query(name string) (string, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return q.db.Rebind(query), nil
}

// InTx runs fn with queries bound to one transaction, committing when fn
// returns nil and rolling back otherwise. Inside a transaction fn runs
// on the same one.
func (q *Queries) InTx(fn func(*Queries) error) error {
	if _, ok := q.ext.(*sqlx.Tx); ok {
		return fn(q)
	}

	tx, err := q.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Queries{dot: q.dot, db: q.db, ext: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Exec runs a named statement.
func (q *Queries) Exec(name string, args ...interface{}) (sql.Result, error) {
	query, err := q.query(name)
	if err != nil {
		return nil, err
	}
	return q.ext.Exec(query, args...)
}

// Get scans a single row into dest. Returns sql.ErrNoRows when nothing matches.
func (q *Queries) Get(name string, dest interface{}, args ...interface{}) error {
	query, err := q.query(name)
	if err != nil {
		return err
	}
	return sqlx.Get(q.ext, dest, query, args...)
}

// Select scans every row into the slice dest.
func (q *Queries) Select(name string, dest interface{}, args ...interface{}) error {
	query, err := q.query(name)
	if err != nil {
		return err
	}
	return sqlx.Select(q.ext, dest, query, args...)
}
