// Package snapshot archives point-in-time copies of the ideation index in
// a local sqlite database, so trend comparisons can run across moments in
// time rather than only across reports.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/agileflowhq/agileflow/internal/index"
	"github.com/agileflowhq/agileflow/internal/storage"
	"github.com/agileflowhq/agileflow/internal/types"
)

// ErrSnapshotNotFound is returned when a diff names an unknown label.
var ErrSnapshotNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	label TEXT NOT NULL UNIQUE,
	taken_at TEXT NOT NULL,
	schema_version TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_ideas (
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
	idea_id TEXT NOT NULL,
	status TEXT NOT NULL,
	category TEXT,
	occurrences INTEGER NOT NULL,
	PRIMARY KEY (snapshot_id, idea_id)
);
`

// Archive is the sqlite-backed snapshot store.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot archive for a project root.
func Open(root string) (*Archive, error) {
	path := storage.SnapshotDBPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing snapshot schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Info describes one stored snapshot.
type Info struct {
	Label     string
	TakenAt   string
	IdeaCount int
}

// Save stores a labeled point-in-time copy of the index document.
// Labels are unique; saving an existing label fails.
func (a *Archive) Save(doc *index.Document, label string) error {
	if label == "" {
		return fmt.Errorf("snapshot label is required")
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO snapshots (label, taken_at, schema_version) VALUES (?, ?, ?)",
		label, types.Timestamp(time.Now()), doc.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot %q: %w", label, err)
	}
	snapID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading snapshot id: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO snapshot_ideas (snapshot_id, idea_id, status, category, occurrences) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing idea insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range doc.IDs() {
		idea := doc.Ideas[id]
		if _, err := stmt.Exec(snapID, id, string(idea.Status), idea.Category, len(idea.Occurrences)); err != nil {
			return fmt.Errorf("inserting idea %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// List returns stored snapshots in the order they were taken.
func (a *Archive) List() ([]Info, error) {
	rows, err := a.db.Query(`
		SELECT s.label, s.taken_at, COUNT(i.idea_id)
		FROM snapshots s
		LEFT JOIN snapshot_ideas i ON i.snapshot_id = s.id
		GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Label, &info.TakenAt, &info.IdeaCount); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Diff compares two snapshots with the same buckets as a report
// comparison: resolved ideas became implemented between A and B, new ideas
// appeared only in B, persisted ideas remain unimplemented in both, and
// dropped ideas vanished from the ledger between A and B.
func (a *Archive) Diff(labelA, labelB string) (index.Comparison, error) {
	ideasA, err := a.snapshotIdeas(labelA)
	if err != nil {
		return index.Comparison{}, err
	}
	ideasB, err := a.snapshotIdeas(labelB)
	if err != nil {
		return index.Comparison{}, err
	}

	var cmp index.Comparison
	for _, id := range sortedIdeaIDs(ideasA) {
		statusB, inB := ideasB[id]
		switch {
		case !inB:
			cmp.Dropped = append(cmp.Dropped, id)
		case statusB == string(types.IdeaImplemented) && ideasA[id] != string(types.IdeaImplemented):
			cmp.Resolved = append(cmp.Resolved, id)
		default:
			cmp.Persisted = append(cmp.Persisted, id)
		}
	}
	for _, id := range sortedIdeaIDs(ideasB) {
		if _, inA := ideasA[id]; !inA {
			cmp.New = append(cmp.New, id)
		}
	}
	return cmp, nil
}

// snapshotIdeas returns idea id -> status for one labeled snapshot.
func (a *Archive) snapshotIdeas(label string) (map[string]string, error) {
	var snapID int64
	err := a.db.QueryRow("SELECT id FROM snapshots WHERE label = ?", label).Scan(&snapID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", label, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up snapshot %q: %w", label, err)
	}

	rows, err := a.db.Query("SELECT idea_id, status FROM snapshot_ideas WHERE snapshot_id = ?", snapID)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %q: %w", label, err)
	}
	defer rows.Close()

	ideas := make(map[string]string)
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("scanning idea row: %w", err)
		}
		ideas[id] = status
	}
	return ideas, rows.Err()
}

func sortedIdeaIDs(ideas map[string]string) []string {
	ids := make([]string, 0, len(ideas))
	for id := range ideas {
		ids = append(ids, id)
	}
	// IDEA-%04d ids sort correctly as strings
	sort.Strings(ids)
	return ids
}
