// Package store provides the SQLite-backed cache of built weights graphs.
// Graphs are keyed by a BLAKE3 fingerprint of the input data and the rule,
// so rebuilding the same graph from unchanged files is a lookup.
package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	weights "spatial-weights"
)

const schema = `
CREATE TABLE IF NOT EXISTS graphs (
	key        TEXT PRIMARY KEY,
	rule       TEXT NOT NULL,
	transform  TEXT NOT NULL,
	nodes      INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS nodes (
	graph_key TEXT NOT NULL REFERENCES graphs(key) ON DELETE CASCADE,
	idx       INTEGER NOT NULL,
	id        TEXT NOT NULL,
	PRIMARY KEY (graph_key, idx)
);
CREATE TABLE IF NOT EXISTS edges (
	graph_key TEXT NOT NULL REFERENCES graphs(key) ON DELETE CASCADE,
	origin    INTEGER NOT NULL,
	neighbour INTEGER NOT NULL,
	weight    REAL NOT NULL,
	PRIMARY KEY (graph_key, origin, neighbour)
);
`

// ErrNotFound indicates no cached graph under a key.
var ErrNotFound = errors.New("store: graph not found")

// Entry summarizes a cached graph
type Entry struct {
	Key       string
	Rule      string
	Transform string
	Nodes     int
	CreatedAt time.Time
}

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Key fingerprints the inputs and a rule description
func Key(rule string, inputs ...[]byte) string {
	h := blake3.New(32, nil)
	h.Write([]byte(rule))
	for _, in := range inputs {
		h.Write([]byte{0})
		h.Write(in)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Put stores g under key, replacing any previous graph.
func (db *DB) Put(key string, g *weights.Graph) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"edges", "nodes"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE graph_key = ?`, key); err != nil {
			return fmt.Errorf("clearing %s of %s: %w", table, key, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM graphs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clearing %s: %w", key, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO graphs (key, rule, transform, nodes, created_at) VALUES (?, ?, ?, ?, ?)`,
		key, g.Rule, g.Transform, g.N(), time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("inserting graph: %w", err)
	}

	nodeStmt, err := tx.Prepare(`INSERT INTO nodes (graph_key, idx, id) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()
	for i, id := range g.IDs {
		if _, err := nodeStmt.Exec(key, i, id); err != nil {
			return fmt.Errorf("inserting node %q: %w", id, err)
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT INTO edges (graph_key, origin, neighbour, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()
	for _, e := range g.Edges() {
		if _, err := edgeStmt.Exec(key, e.From, e.To, e.Weight); err != nil {
			return fmt.Errorf("inserting edge %d->%d: %w", e.From, e.To, err)
		}
	}

	return tx.Commit()
}

// Get loads the graph stored under key.
func (db *DB) Get(key string) (*weights.Graph, error) {
	g := &weights.Graph{}
	var n int
	err := db.conn.QueryRow(`SELECT rule, transform, nodes FROM graphs WHERE key = ?`, key).
		Scan(&g.Rule, &g.Transform, &n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying graph: %w", err)
	}

	g.IDs = make([]string, n)
	g.Neighbours = make([][]int, n)
	g.Weights = make([][]float64, n)
	for i := range g.Neighbours {
		g.Neighbours[i] = []int{}
		g.Weights[i] = []float64{}
	}

	rows, err := db.conn.Query(`SELECT idx, id FROM nodes WHERE graph_key = ? ORDER BY idx`, key)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	for rows.Next() {
		var idx int
		var id string
		if err := rows.Scan(&idx, &id); err != nil {
			rows.Close()
			return nil, err
		}
		if idx < 0 || idx >= n {
			rows.Close()
			return nil, fmt.Errorf("node index %d out of range: %w", idx, weights.ErrMalformed)
		}
		g.IDs[idx] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.conn.Query(
		`SELECT origin, neighbour, weight FROM edges WHERE graph_key = ? ORDER BY origin, neighbour`, key)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var i, j int
		var w float64
		if err := rows.Scan(&i, &j, &w); err != nil {
			return nil, err
		}
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, fmt.Errorf("edge %d->%d out of range: %w", i, j, weights.ErrMalformed)
		}
		g.Neighbours[i] = append(g.Neighbours[i], j)
		g.Weights[i] = append(g.Weights[i], w)
	}
	return g, rows.Err()
}

// List returns every cached graph, newest first.
func (db *DB) List() ([]Entry, error) {
	rows, err := db.conn.Query(`SELECT key, rule, transform, nodes, created_at FROM graphs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.Key, &e.Rule, &e.Transform, &e.Nodes, &ms); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the graph under key.
func (db *DB) Delete(key string) error {
	for _, table := range []string{"edges", "nodes"} {
		if _, err := db.conn.Exec(`DELETE FROM `+table+` WHERE graph_key = ?`, key); err != nil {
			return err
		}
	}
	res, err := db.conn.Exec(`DELETE FROM graphs WHERE key = ?`, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
