package storage

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StatusDocument is the story ledger (status.json). Story records are kept
// as free-form JSON objects so fields this core does not know about survive
// a read-modify-write cycle, and top-level keys other than "stories" are
// carried through untouched.
type StatusDocument struct {
	Stories map[string]map[string]any

	// extra holds top-level keys other than "stories", preserved verbatim.
	extra map[string]json.RawMessage
}

// NewStatusDocument creates an empty ledger document.
func NewStatusDocument() *StatusDocument {
	return &StatusDocument{
		Stories: make(map[string]map[string]any),
		extra:   make(map[string]json.RawMessage),
	}
}

// UnmarshalJSON decodes the stories map and stashes every other top-level key.
func (d *StatusDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Stories = make(map[string]map[string]any)
	d.extra = make(map[string]json.RawMessage)

	for key, val := range raw {
		if key != "stories" {
			d.extra[key] = val
			continue
		}
		if err := json.Unmarshal(val, &d.Stories); err != nil {
			return fmt.Errorf("decoding stories: %w", err)
		}
	}
	if d.Stories == nil {
		d.Stories = make(map[string]map[string]any)
	}
	return nil
}

// MarshalJSON re-assembles the document including preserved keys.
func (d *StatusDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.extra)+1)
	for key, val := range d.extra {
		out[key] = val
	}
	stories, err := json.Marshal(d.Stories)
	if err != nil {
		return nil, fmt.Errorf("encoding stories: %w", err)
	}
	out["stories"] = stories
	return json.Marshal(out)
}

// StoryIDs returns the ledger's story ids in sorted order.
func (d *StatusDocument) StoryIDs() []string {
	ids := make([]string, 0, len(d.Stories))
	for id := range d.Stories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadStatusDocument loads the story ledger for a project root.
// Absence and corruption both surface as ErrNotFound.
func ReadStatusDocument(store Store, root string) (*StatusDocument, error) {
	doc := NewStatusDocument()
	if err := store.Load(StatusPath(root), doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteStatusDocument writes the full story ledger back for a project root.
func WriteStatusDocument(store Store, root string, doc *StatusDocument) error {
	return store.Save(StatusPath(root), doc)
}
