// Package report turns unused keys into positioned warnings and renders
// detection reports for humans and machines.
package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/citeclean/pkg/core"
)

// MessageFormat is the text attached to every unused-reference warning.
const MessageFormat = "Unused reference: '%s'"

// Locator implements core.Locator by re-scanning the document text.
type Locator struct{}

// NewLocator creates a new Locator.
func NewLocator() *Locator {
	return &Locator{}
}

// Locate implements core.Locator.
func (l *Locator) Locate(doc core.Document, unused core.KeySet) []core.Diagnostic {
	return Locate(doc, unused)
}

// Locate emits one warning per literal occurrence of each distinct unused
// key, line by line. Positions are independent of where the parser found
// the entry: a key that also appears inside a field value is flagged there too.
func Locate(doc core.Document, unused core.KeySet) []core.Diagnostic {
	keys := unused.Distinct()
	diags := []core.Diagnostic{}
	if len(keys) == 0 {
		return diags
	}

	for i, line := range strings.Split(doc.Text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		start := len(diags)

		for _, key := range keys {
			if key == "" {
				continue
			}
			offset := 0
			for {
				idx := strings.Index(line[offset:], key)
				if idx < 0 {
					break
				}
				byteCol := offset + idx
				col := utf8.RuneCountInString(line[:byteCol]) + 1
				diags = append(diags, core.Diagnostic{
					Path:      doc.Path,
					Line:      i + 1,
					Column:    col,
					EndLine:   i + 1,
					EndColumn: col + utf8.RuneCountInString(key),
					Severity:  core.SeverityWarning,
					Key:       key,
					Message:   fmt.Sprintf(MessageFormat, key),
				})
				offset = byteCol + len(key)
			}
		}

		lineDiags := diags[start:]
		sort.SliceStable(lineDiags, func(a, b int) bool {
			return lineDiags[a].Column < lineDiags[b].Column
		})
	}
	return diags
}

var _ core.Locator = (*Locator)(nil)
