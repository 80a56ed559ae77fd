// Package sqllog implements a deletion log in an SQLite database.
package sqllog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/osmarks/autobotrobot/deleted"
)

// Log is a deletion log backed by an SQLite database.
type Log struct {
	db *sqlitex.Pool
}

var _ deleted.Log = (*Log)(nil)

//go:embed schema.sql
var schemaSQL string

// Init initializes the deletion log schema in an SQLite database.
// It is safe to call on a database which already has the schema.
// For convenience, it accepts either a single connection or a pool.
func Init[DB *sqlite.Conn | *sqlitex.Pool](ctx context.Context, db DB) error {
	var conn *sqlite.Conn
	switch db := any(db).(type) {
	case *sqlite.Conn:
		conn = db
	case *sqlitex.Pool:
		var err error
		conn, err = db.Take(ctx)
		defer db.Put(conn)
		if err != nil {
			return fmt.Errorf("couldn't get connection from pool: %w", err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schemaSQL, nil); err != nil {
		return fmt.Errorf("couldn't initialize deletion log schema: %w", err)
	}
	return nil
}

// Open returns a deletion log within the given database, creating its
// schema if needed. The db must remain open for the lifetime of the log.
func Open(ctx context.Context, db *sqlitex.Pool) (*Log, error) {
	if err := Init(ctx, db); err != nil {
		return nil, err
	}
	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append records an item.
func (l *Log) Append(ctx context.Context, item deleted.Item) error {
	conn, err := l.db.Take(ctx)
	defer l.db.Put(conn)
	if err != nil {
		return fmt.Errorf("couldn't get connection to record deletion: %w", err)
	}
	opts := sqlitex.ExecOptions{
		Named: map[string]any{
			":time": item.Time.UnixNano(),
			":item": item.Text,
		},
	}
	if err := sqlitex.Execute(conn, `INSERT INTO deleted_items (timestamp, item) VALUES (:time, :item)`, &opts); err != nil {
		return fmt.Errorf("couldn't record deletion: %w", err)
	}
	return nil
}

// Recent returns up to limit recent items, newest first, optionally
// restricted to those containing search.
func (l *Log) Recent(ctx context.Context, limit int, search string) ([]deleted.Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	conn, err := l.db.Take(ctx)
	defer l.db.Put(conn)
	if err != nil {
		return nil, fmt.Errorf("couldn't get connection to list deletions: %w", err)
	}
	const sel = `SELECT timestamp, item FROM deleted_items WHERE item LIKE :pat ESCAPE '\' ORDER BY timestamp DESC, id DESC LIMIT :n`
	r := make([]deleted.Item, 0, min(limit, 128))
	opts := sqlitex.ExecOptions{
		Named: map[string]any{
			":pat": "%" + likeEscape.Replace(search) + "%",
			":n":   int64(limit),
		},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r = append(r, deleted.Item{
				Time: time.Unix(0, stmt.ColumnInt64(0)),
				Text: stmt.ColumnText(1),
			})
			return nil
		},
	}
	if err := sqlitex.Execute(conn, sel, &opts); err != nil {
		return nil, fmt.Errorf("couldn't list deletions: %w", err)
	}
	return r, nil
}

// likeEscape escapes LIKE wildcards so that searches are plain substrings.
var likeEscape = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
