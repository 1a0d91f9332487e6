// Package store persists committed settlements: a SQLite database holding
// every saved graph, and zstd compressed JSON snapshot files.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/settlement"
	"github.com/IlikeChooros/go-settlement/pkg/structure"
)

var ErrNotFound = errors.New("store: settlement not found")

// DB wraps a SQLite connection
type DB struct {
	conn *sqlx.DB
}

// Open or create the database at 'path'
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		area_json TEXT NOT NULL,
		totals_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		settlement_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		structure TEXT NOT NULL,
		facing INTEGER NOT NULL,
		pos_x INTEGER NOT NULL,
		pos_y INTEGER NOT NULL,
		pos_z INTEGER NOT NULL,
		box_json TEXT NOT NULL,
		parent INTEGER NOT NULL,
		incoming_json TEXT,
		cost REAL NOT NULL,
		routes_json TEXT NOT NULL,
		book_json TEXT NOT NULL,
		PRIMARY KEY (settlement_id, id)
	);

	CREATE TABLE IF NOT EXISTS edges (
		settlement_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		from_id INTEGER NOT NULL,
		to_id INTEGER NOT NULL,
		slot_facing INTEGER NOT NULL,
		slot_x INTEGER NOT NULL,
		slot_y INTEGER NOT NULL,
		slot_z INTEGER NOT NULL,
		PRIMARY KEY (settlement_id, seq)
	);

	CREATE TABLE IF NOT EXISTS phases (
		settlement_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		nodes_json TEXT NOT NULL,
		added INTEGER NOT NULL,
		reward REAL NOT NULL,
		terminal INTEGER NOT NULL,
		cycles INTEGER NOT NULL,
		stop_reason TEXT NOT NULL,
		PRIMARY KEY (settlement_id, seq)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type settlementRow struct {
	ID     string `db:"id"`
	Type   string `db:"type"`
	Area   string `db:"area_json"`
	Totals string `db:"totals_json"`
}

type nodeRow struct {
	ID        int            `db:"id"`
	Structure string         `db:"structure"`
	Facing    int            `db:"facing"`
	X         int            `db:"pos_x"`
	Y         int            `db:"pos_y"`
	Z         int            `db:"pos_z"`
	Box       string         `db:"box_json"`
	Parent    int            `db:"parent"`
	Incoming  sql.NullString `db:"incoming_json"`
	Cost      float64        `db:"cost"`
	Routes    string         `db:"routes_json"`
	Book      string         `db:"book_json"`
}

type edgeRow struct {
	From   int `db:"from_id"`
	To     int `db:"to_id"`
	Facing int `db:"slot_facing"`
	X      int `db:"slot_x"`
	Y      int `db:"slot_y"`
	Z      int `db:"slot_z"`
}

type phaseRow struct {
	Name       string  `db:"name"`
	Nodes      string  `db:"nodes_json"`
	Added      int     `db:"added"`
	Reward     float64 `db:"reward"`
	Terminal   bool    `db:"terminal"`
	Cycles     int     `db:"cycles"`
	StopReason string  `db:"stop_reason"`
}

func marshal(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// Save writes the snapshot, replacing an earlier save with the same id
func (db *DB) Save(snap settlement.Snapshot) error {
	id := snap.ID.String()
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "phases"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE settlement_id = ?", id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO settlements (id, type, area_json, totals_json) VALUES (?, ?, ?, ?)",
		id, snap.Type, marshal(snap.Area), marshal(snap.Totals),
	); err != nil {
		return fmt.Errorf("insert settlement %s: %w", id, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO nodes
		(settlement_id, id, structure, facing, pos_x, pos_y, pos_z, box_json,
		 parent, incoming_json, cost, routes_json, book_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range snap.Nodes {
		var incoming sql.NullString
		if n.Incoming != nil {
			incoming = sql.NullString{String: marshal(n.Incoming), Valid: true}
		}
		if _, err := stmt.Exec(
			id, n.ID, n.Structure, n.Facing, n.Position.X, n.Position.Y, n.Position.Z, marshal(n.Box),
			n.Parent, incoming, n.Cost, marshal(n.Routes), marshal(n.Book),
		); err != nil {
			return fmt.Errorf("insert node %d: %w", n.ID, err)
		}
	}

	for i, e := range snap.Edges {
		if _, err := tx.Exec(
			`INSERT INTO edges (settlement_id, seq, from_id, to_id, slot_facing, slot_x, slot_y, slot_z)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, e.From, e.To, e.Slot.Facing, e.Slot.Offset.X, e.Slot.Offset.Y, e.Slot.Offset.Z,
		); err != nil {
			return fmt.Errorf("insert edge %d: %w", i, err)
		}
	}

	for i, p := range snap.Phases {
		if _, err := tx.Exec(
			`INSERT INTO phases (settlement_id, seq, name, nodes_json, added, reward, terminal, cycles, stop_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, p.Name, marshal(p.Nodes), p.Added, p.Reward, p.Terminal, p.Cycles, p.StopReason,
		); err != nil {
			return fmt.Errorf("insert phase %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("settlement saved", "id", id, "nodes", len(snap.Nodes), "phases", len(snap.Phases))
	return nil
}

// Load reads the settlement saved under 'id', ErrNotFound if there is none
func (db *DB) Load(id uuid.UUID) (settlement.Snapshot, error) {
	snap := settlement.Snapshot{ID: id}
	key := id.String()

	var row settlementRow
	if err := db.conn.Get(&row, "SELECT id, type, area_json, totals_json FROM settlements WHERE id = ?", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return snap, err
	}
	snap.Type = row.Type
	if err := json.Unmarshal([]byte(row.Area), &snap.Area); err != nil {
		return snap, fmt.Errorf("settlement %s area: %w", key, err)
	}
	if err := json.Unmarshal([]byte(row.Totals), &snap.Totals); err != nil {
		return snap, fmt.Errorf("settlement %s totals: %w", key, err)
	}

	var nodes []nodeRow
	if err := db.conn.Select(&nodes,
		`SELECT id, structure, facing, pos_x, pos_y, pos_z, box_json, parent, incoming_json, cost, routes_json, book_json
		FROM nodes WHERE settlement_id = ? ORDER BY id`, key); err != nil {
		return snap, fmt.Errorf("select nodes: %w", err)
	}
	snap.Nodes = make([]settlement.NodeRecord, len(nodes))
	for i, r := range nodes {
		rec := settlement.NodeRecord{
			ID:        r.ID,
			Structure: r.Structure,
			Facing:    r.Facing,
			Position:  geom.V3(r.X, r.Y, r.Z),
			Parent:    r.Parent,
			Cost:      r.Cost,
		}
		if err := unmarshalAll(
			[]byte(r.Box), &rec.Box,
			[]byte(r.Routes), &rec.Routes,
			[]byte(r.Book), &rec.Book,
		); err != nil {
			return snap, fmt.Errorf("node %d: %w", r.ID, err)
		}
		if r.Incoming.Valid {
			rec.Incoming = &structure.Slot{}
			if err := json.Unmarshal([]byte(r.Incoming.String), rec.Incoming); err != nil {
				return snap, fmt.Errorf("node %d incoming: %w", r.ID, err)
			}
		}
		snap.Nodes[i] = rec
	}

	var edges []edgeRow
	if err := db.conn.Select(&edges,
		"SELECT from_id, to_id, slot_facing, slot_x, slot_y, slot_z FROM edges WHERE settlement_id = ? ORDER BY seq", key); err != nil {
		return snap, fmt.Errorf("select edges: %w", err)
	}
	snap.Edges = make([]settlement.EdgeRecord, len(edges))
	for i, e := range edges {
		snap.Edges[i] = settlement.EdgeRecord{
			From: e.From,
			To:   e.To,
			Slot: structure.Slot{Facing: e.Facing, Offset: geom.V3(e.X, e.Y, e.Z)},
		}
	}

	var phases []phaseRow
	if err := db.conn.Select(&phases,
		`SELECT name, nodes_json, added, reward, terminal, cycles, stop_reason
		FROM phases WHERE settlement_id = ? ORDER BY seq`, key); err != nil {
		return snap, fmt.Errorf("select phases: %w", err)
	}
	snap.Phases = make([]settlement.PhaseRecord, len(phases))
	for i, p := range phases {
		rec := settlement.PhaseRecord{
			Name:       p.Name,
			Added:      p.Added,
			Reward:     p.Reward,
			Terminal:   p.Terminal,
			Cycles:     p.Cycles,
			StopReason: p.StopReason,
		}
		if err := json.Unmarshal([]byte(p.Nodes), &rec.Nodes); err != nil {
			return snap, fmt.Errorf("phase %q: %w", p.Name, err)
		}
		snap.Phases[i] = rec
	}
	return snap, nil
}

// Ids of every saved settlement
func (db *DB) List() ([]uuid.UUID, error) {
	var keys []string
	if err := db.conn.Select(&keys, "SELECT id FROM settlements ORDER BY id"); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		id, err := uuid.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("settlement id %q: %w", k, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode pairs of (data, target)
func unmarshalAll(pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := json.Unmarshal(pairs[i].([]byte), pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
