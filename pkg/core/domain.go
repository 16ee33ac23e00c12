// Package core holds the domain model of unused-reference detection.
//
// A reference database (a .bib document) declares entries identified by
// keys. Manuscripts (.tex files) cite them. A key is "used" when it appears
// as a literal substring of at least one manuscript.
package core

// ReferenceDatabaseExt is the only document extension Detect accepts.
const ReferenceDatabaseExt = ".bib"

// Entry is one record of the reference database.
// Only Key takes part in detection; Type and the position are kept for listing.
type Entry struct {
	Type   string `json:"type" yaml:"type"`
	Key    string `json:"key" yaml:"key"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// KeySet is the ordered sequence of entry keys of one document.
// Duplicates are preserved and checked independently.
type KeySet []string

// KeysOf returns the keys of entries in document order.
func KeysOf(entries []Entry) KeySet {
	keys := make(KeySet, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Distinct returns the keys with duplicates removed, keeping first occurrences in order.
func (k KeySet) Distinct() KeySet {
	seen := make(map[string]bool, len(k))
	out := make(KeySet, 0, len(k))
	for _, key := range k {
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// Document is a reference database passed explicitly to the detector.
// Path identifies it; Text is its full content.
type Document struct {
	Path string
	Text string
}

// SourceFile is the raw text of one manuscript, identified by its locator.
type SourceFile struct {
	Path string
	Text string
}

// UsageResult maps each key to whether any manuscript referenced it.
type UsageResult map[string]bool

// Severity of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
)

// Diagnostic is a warning marker attached to the reference database.
// Lines and columns are 1-based; columns count runes and EndColumn is exclusive.
type Diagnostic struct {
	Path      string   `json:"path" yaml:"path"`
	Line      int      `json:"line" yaml:"line"`
	Column    int      `json:"column" yaml:"column"`
	EndLine   int      `json:"end_line" yaml:"end_line"`
	EndColumn int      `json:"end_column" yaml:"end_column"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Key       string   `json:"key" yaml:"key"`
	Message   string   `json:"message" yaml:"message"`
}

// Skipped records a manuscript that could not be read under the lenient read policy.
type Skipped struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Report is the outcome of one detection run. Nothing in it outlives the run.
type Report struct {
	Document    string       `json:"document" yaml:"document"`
	Keys        KeySet       `json:"keys" yaml:"keys"`
	Unused      KeySet       `json:"unused" yaml:"unused"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Scanned     []string     `json:"scanned" yaml:"scanned"`
	Skipped     []Skipped    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}
