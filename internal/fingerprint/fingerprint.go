// Package fingerprint normalizes ideas into comparable signatures and
// scores similarity between them. The ideation index uses it to decide
// whether an idea surfacing in a report is new or a recurrence of an
// entry already in the ledger.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"unicode"
)

// Signature is the normalized, comparable form of an idea.
type Signature struct {
	// Title is the normalized title: lowercase, punctuation stripped,
	// whitespace collapsed.
	Title string

	// Files is the normalized affected-file set: deduped and sorted.
	Files []string
}

// NewSignature normalizes a raw title and file list into a Signature.
func NewSignature(title string, files []string) Signature {
	return Signature{
		Title: NormalizeTitle(title),
		Files: NormalizeFiles(files),
	}
}

// NormalizeTitle lowercases the title, strips punctuation, and collapses
// runs of whitespace to single spaces.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation separates tokens rather than vanishing, so
			// "auth/login" and "auth login" normalize identically.
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeFiles dedupes and sorts a file path list.
func NormalizeFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Fingerprint computes the exact-match key for an idea: a hex-encoded
// sha256 over the normalized title and sorted file set. Two ideas with
// identical normalized titles and file sets always fingerprint equal.
func Fingerprint(title string, files []string) string {
	sig := NewSignature(title, files)
	h := sha256.New()
	h.Write([]byte(sig.Title))
	for _, f := range sig.Files {
		h.Write([]byte{'\n'})
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Scorer computes similarity scores between signatures using a configured
// weighting of title and file signals.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer with the given configuration.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Similarity scores two signatures in [0, 1].
//
// The score is a weighted average of title token overlap and file set
// overlap. When either side has no file list the file signal is dropped
// and the title carries the whole score; the signals are combined, never
// OR'd, so matching files with a completely different title cannot clear
// the duplicate threshold on their own.
func (s *Scorer) Similarity(a, b Signature) float64 {
	titleScore := tokenDice(a.Title, b.Title)
	if len(a.Files) == 0 || len(b.Files) == 0 {
		return titleScore
	}
	fileScore := jaccard(a.Files, b.Files)
	total := s.cfg.TitleWeight + s.cfg.FileWeight
	return (s.cfg.TitleWeight*titleScore + s.cfg.FileWeight*fileScore) / total
}

// IsSame reports whether a score clears the recurring-idea threshold.
func (s *Scorer) IsSame(score float64) bool {
	return score >= s.cfg.DuplicateThreshold
}

// IsHighConfidence reports whether a score clears the exact-duplicate
// threshold (as opposed to the flagged-candidate band).
func (s *Scorer) IsHighConfidence(score float64) bool {
	return score >= s.cfg.SameThreshold
}

// tokenDice computes the Sørensen–Dice coefficient over whitespace tokens
// of two normalized titles.
func tokenDice(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]int, len(ta))
	for _, tok := range ta {
		set[tok]++
	}
	shared := 0
	for _, tok := range tb {
		if set[tok] > 0 {
			set[tok]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

// jaccard computes set overlap of two sorted, deduped path lists.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, f := range a {
		set[f] = true
	}
	shared := 0
	for _, f := range b {
		if set[f] {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
