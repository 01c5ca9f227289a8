package storage

import "path/filepath"

// Well-known ledger locations under a project root. Every component takes
// the project root and derives paths through these helpers so the layout
// is defined in exactly one place.

// StatusPath returns the story ledger location.
func StatusPath(root string) string {
	return filepath.Join(root, "docs", "09-agents", "status.json")
}

// MetadataPath returns the project metadata file location.
func MetadataPath(root string) string {
	return filepath.Join(root, "docs", "00-meta", "agileflow-metadata.json")
}

// IndexPath returns the ideation index location.
func IndexPath(root string) string {
	return filepath.Join(root, "docs", "00-meta", "ideation-index.json")
}

// BusLogPath returns the append-only JSONL message bus location.
func BusLogPath(root string) string {
	return filepath.Join(root, "docs", "09-agents", "bus", "log.jsonl")
}

// SnapshotDBPath returns the sqlite snapshot archive location.
func SnapshotDBPath(root string) string {
	return filepath.Join(root, "docs", "00-meta", "ideation-snapshots.db")
}
