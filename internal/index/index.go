// Package index stores resolved scope trees in a SQLite database so that
// symbols can be queried across runs without re-parsing.
//
// Every Store call is one run, identified by a UUID. Scopes are numbered
// in pre-order within a run; a symbol row points at its scope row.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/funvibe/decaf/internal/export"
	"github.com/funvibe/decaf/internal/symbols"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	file       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS scopes (
	run_id    TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	id        INTEGER NOT NULL,
	parent_id INTEGER,
	kind      TEXT    NOT NULL,
	owner     TEXT    NOT NULL,
	line      INTEGER NOT NULL,
	depth     INTEGER NOT NULL,
	PRIMARY KEY (run_id, id)
);
CREATE TABLE IF NOT EXISTS symbols (
	run_id    TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	scope_id  INTEGER NOT NULL,
	seq       INTEGER NOT NULL,
	name      TEXT    NOT NULL,
	kind      TEXT    NOT NULL,
	type      TEXT    NOT NULL,
	length    INTEGER NOT NULL,
	line      INTEGER NOT NULL,
	builtin   INTEGER NOT NULL,
	signature TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS symbols_by_name ON symbols(run_id, name);
`

// Fixed-width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNoRun is returned when a run id is not in the index.
var ErrNoRun = errors.New("no such run")

// Run is one stored resolution.
type Run struct {
	ID        string
	File      string
	CreatedAt time.Time
	Scopes    int
	Symbols   int
}

// Hit is one symbol matched by Lookup, with the scope that declares it.
type Hit struct {
	ScopeKind  string
	ScopeOwner string
	ScopeLine  int
	Depth      int
	Symbol     export.Symbol
	Signature  string
}

type Index struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the index at path, creating parent directories.
func Open(ctx context.Context, path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	return &Index{db: db, now: time.Now}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Store records the scope tree of file as a new run and returns its id.
func (ix *Index) Store(ctx context.Context, file string, root *export.Scope) (string, error) {
	if root == nil {
		return "", errors.New("nil scope tree")
	}
	runID := uuid.NewString()

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, file, created_at) VALUES (?, ?, ?)",
		runID, file, ix.now().UTC().Format(timeLayout)); err != nil {
		return "", err
	}

	scopeStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO scopes (run_id, id, parent_id, kind, owner, line, depth) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer scopeStmt.Close()
	symStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO symbols (run_id, scope_id, seq, name, kind, type, length, line, builtin, signature) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer symStmt.Close()

	next := 0
	var insert func(s *export.Scope, parent sql.NullInt64, depth int) error
	insert = func(s *export.Scope, parent sql.NullInt64, depth int) error {
		id := next
		next++
		if _, err := scopeStmt.ExecContext(ctx, runID, id, parent, s.Kind, s.Owner, s.Line, depth); err != nil {
			return err
		}
		for i, sym := range s.Symbols {
			if _, err := symStmt.ExecContext(ctx, runID, id, i, sym.Name, sym.Kind, sym.Type,
				sym.Length, sym.Line, sym.Builtin, Signature(sym)); err != nil {
				return err
			}
		}
		for _, c := range s.Children {
			if err := insert(c, sql.NullInt64{Int64: int64(id), Valid: true}, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(root, sql.NullInt64{}, 0); err != nil {
		return "", fmt.Errorf("storing run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// Lookup returns every declaration of name in the run, outermost first.
// An empty runID means the latest run.
func (ix *Index) Lookup(ctx context.Context, runID, name string) ([]Hit, error) {
	runID, err := ix.resolveRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := ix.db.QueryContext(ctx, `
SELECT sc.kind, sc.owner, sc.line, sc.depth,
       sy.name, sy.kind, sy.type, sy.length, sy.line, sy.builtin, sy.signature
FROM symbols sy
JOIN scopes sc ON sc.run_id = sy.run_id AND sc.id = sy.scope_id
WHERE sy.run_id = ? AND sy.name = ?
ORDER BY sc.depth, sc.id, sy.seq`, runID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ScopeKind, &h.ScopeOwner, &h.ScopeLine, &h.Depth,
			&h.Symbol.Name, &h.Symbol.Kind, &h.Symbol.Type, &h.Symbol.Length,
			&h.Symbol.Line, &h.Symbol.Builtin, &h.Signature); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Runs lists stored runs, newest first.
func (ix *Index) Runs(ctx context.Context) ([]Run, error) {
	rows, err := ix.db.QueryContext(ctx, `
SELECT r.id, r.file, r.created_at,
       (SELECT COUNT(*) FROM scopes s WHERE s.run_id = r.id),
       (SELECT COUNT(*) FROM symbols y WHERE y.run_id = r.id)
FROM runs r
ORDER BY r.created_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.File, &created, &r.Scopes, &r.Symbols); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a run and everything recorded for it.
func (ix *Index) Delete(ctx context.Context, runID string) error {
	res, err := ix.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNoRun, runID)
	}
	return nil
}

func (ix *Index) resolveRun(ctx context.Context, runID string) (string, error) {
	if runID == "" {
		err := ix.db.QueryRowContext(ctx,
			"SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1").Scan(&runID)
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoRun
		}
		return runID, err
	}
	var found string
	err := ix.db.QueryRowContext(ctx, "SELECT id FROM runs WHERE id = ?", runID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNoRun, runID)
	}
	return found, err
}

// Signature renders a stored symbol with symbols.Signature, so index
// output matches the resolver's printers.
func Signature(sym export.Symbol) string {
	params := make([]string, len(sym.Params))
	for i, p := range sym.Params {
		params[i] = p.Type
	}
	return symbols.Signature(sym.Kind, sym.Type, sym.Name, sym.Length, params)
}
