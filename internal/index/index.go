// Package index owns the ideation ledger: the append-only history of
// ideas surfaced across ideation reports, keyed by monotonically assigned
// IDEA-XXXX identifiers. It decides whether an incoming idea is new or a
// recurrence (via the fingerprint engine), records occurrences, and
// answers trend and cross-report comparison queries.
package index

import (
	"errors"
	"fmt"
	"time"

	"github.com/agileflowhq/agileflow/internal/fingerprint"
	"github.com/agileflowhq/agileflow/internal/storage"
	"github.com/agileflowhq/agileflow/internal/types"
)

// SchemaVersion is the index document schema this code writes.
const SchemaVersion = "1.0"

// ErrIdeaNotFound is returned when a focused idea id is not in the ledger.
var ErrIdeaNotFound = errors.New("idea not found")

// ReportMeta records per-report metadata in the index document.
type ReportMeta struct {
	Date      string `json:"date"`
	IdeaCount int    `json:"idea_count"`
}

// Document is the ideation index ledger (ideation-index.json).
// It is a single shared mutable document; callers must treat
// load -> mutate -> save as one critical section.
type Document struct {
	SchemaVersion string                 `json:"schema_version"`
	Updated       string                 `json:"updated"`
	Ideas         map[string]*types.Idea `json:"ideas"`
	Reports       map[string]ReportMeta  `json:"reports"`
	NextID        int                    `json:"next_id"`
}

// NewDocument creates an empty index document.
func NewDocument() *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Ideas:         make(map[string]*types.Idea),
		Reports:       make(map[string]ReportMeta),
		NextID:        1,
	}
}

// Index provides the operations over the ideation ledger.
type Index struct {
	store  storage.Store
	scorer *fingerprint.Scorer
	now    func() time.Time
}

// New creates an Index over the given store with the given similarity
// configuration.
func New(store storage.Store, cfg fingerprint.Config) *Index {
	return &Index{
		store:  store,
		scorer: fingerprint.NewScorer(cfg),
		now:    time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (ix *Index) SetClock(now func() time.Time) {
	ix.now = now
}

// Load reads the index document for a project root. An absent or corrupt
// file yields a default empty index rather than an error; a missing
// ledger is a normal state for a project that has not run ideation yet.
func (ix *Index) Load(root string) (*Document, error) {
	doc := NewDocument()
	err := ix.store.Load(storage.IndexPath(root), doc)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewDocument(), nil
		}
		return nil, err
	}
	if doc.Ideas == nil {
		doc.Ideas = make(map[string]*types.Idea)
	}
	if doc.Reports == nil {
		doc.Reports = make(map[string]ReportMeta)
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return doc, nil
}

// Save writes the full index document back for a project root.
func (ix *Index) Save(root string, doc *Document) error {
	doc.Updated = types.Timestamp(ix.now())
	return ix.store.Save(storage.IndexPath(root), doc)
}

// AddIdea assigns the next IDEA-XXXX id to a new idea, records its first
// occurrence in the given report, and increments the counter. Ids are
// never reused, even for ideas later rejected.
func (ix *Index) AddIdea(doc *Document, input IdeaInput, report string) string {
	id := fmt.Sprintf("IDEA-%04d", doc.NextID)
	doc.NextID++

	now := ix.now()
	doc.Ideas[id] = &types.Idea{
		ID:        id,
		Title:     input.Title,
		Category:  input.Category,
		Files:     fingerprint.NormalizeFiles(input.Files),
		Status:    types.IdeaPending,
		FirstSeen: types.DateStamp(now),
		Occurrences: []types.Occurrence{
			{Report: report, Date: types.DateStamp(now), Experts: input.Experts},
		},
	}
	ix.touchReport(doc, report)
	return id
}

// RecordOccurrence appends an occurrence to an existing idea.
func (ix *Index) RecordOccurrence(doc *Document, id, report string, experts []string) error {
	idea, ok := doc.Ideas[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrIdeaNotFound)
	}
	idea.Occurrences = append(idea.Occurrences, types.Occurrence{
		Report:  report,
		Date:    types.DateStamp(ix.now()),
		Experts: experts,
	})
	ix.touchReport(doc, report)
	return nil
}

// Focus looks up an idea for the focused re-ideation read path.
func Focus(doc *Document, id string) (*types.Idea, error) {
	idea, ok := doc.Ideas[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrIdeaNotFound)
	}
	return idea, nil
}

// IDs returns the ledger's idea ids in numeric order. Callers surface
// these when a focus lookup misses.
func (d *Document) IDs() []string {
	ids := make([]string, 0, len(d.Ideas))
	for n := 1; n < d.NextID; n++ {
		id := fmt.Sprintf("IDEA-%04d", n)
		if _, ok := d.Ideas[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (ix *Index) touchReport(doc *Document, report string) {
	meta := doc.Reports[report]
	if meta.Date == "" {
		meta.Date = types.DateStamp(ix.now())
	}
	meta.IdeaCount++
	doc.Reports[report] = meta
}
