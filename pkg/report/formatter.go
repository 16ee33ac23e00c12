package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/citeclean/pkg/core"
)

// Formatter renders a detection report in one output format.
type Formatter interface {
	Format(w io.Writer, rep *core.Report) error
}

// DefaultFormatters returns the standard set of formatters keyed by name.
func DefaultFormatters() map[string]Formatter {
	return map[string]Formatter{
		"text": &TextFormatter{},
		"json": &JSONFormatter{Indent: "  "},
		"yaml": &YAMLFormatter{},
		"csv":  &CSVFormatter{},
	}
}

// Names returns the registered format names, sorted.
func Names() []string {
	var names []string
	for name := range DefaultFormatters() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the formatter registered under name (case-insensitive).
func Lookup(name string) (Formatter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "text"
	}
	f, ok := DefaultFormatters()[key]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (expected one of %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// --- Text Formatter ---

// TextFormatter prints one compiler-style line per diagnostic followed by a summary.
type TextFormatter struct {
	// Quiet suppresses the summary line.
	Quiet bool
}

func (f *TextFormatter) Format(w io.Writer, rep *core.Report) error {
	for _, d := range rep.Diagnostics {
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.Path, d.Line, d.Column, d.Severity, d.Message); err != nil {
			return err
		}
	}
	for _, s := range rep.Skipped {
		if _, err := fmt.Fprintf(w, "%s: skipped: %s\n", s.Path, s.Error); err != nil {
			return err
		}
	}
	if f.Quiet {
		return nil
	}
	_, err := fmt.Fprintln(w, Summary(rep))
	return err
}

// Summary describes a report in one line.
func Summary(rep *core.Report) string {
	files := plural(len(rep.Scanned), "manuscript")
	if len(rep.Unused) == 0 {
		return fmt.Sprintf("%s: all %s used (%s scanned)", rep.Document, plural(len(rep.Keys), "reference"), files)
	}
	return fmt.Sprintf("%s: %d of %s unused (%s scanned)", rep.Document, len(rep.Unused), plural(len(rep.Keys), "reference"), files)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// --- JSON Formatter ---

// JSONFormatter renders the full report as JSON.
type JSONFormatter struct {
	Indent string
}

func (f *JSONFormatter) Format(w io.Writer, rep *core.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	return enc.Encode(normalize(rep))
}

// --- YAML Formatter ---

// YAMLFormatter renders the full report as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(w io.Writer, rep *core.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(rep)); err != nil {
		return err
	}
	return enc.Close()
}

// --- CSV Formatter ---

// CSVFormatter renders one row per diagnostic with a header row.
type CSVFormatter struct{}

var csvHeader = []string{"path", "line", "column", "end_line", "end_column", "severity", "key", "message"}

func (f *CSVFormatter) Format(w io.Writer, rep *core.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range rep.Diagnostics {
		row := []string{
			d.Path,
			strconv.Itoa(d.Line),
			strconv.Itoa(d.Column),
			strconv.Itoa(d.EndLine),
			strconv.Itoa(d.EndColumn),
			string(d.Severity),
			d.Key,
			d.Message,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// normalize replaces nil slices so machine formats always emit lists.
func normalize(rep *core.Report) *core.Report {
	out := *rep
	if out.Keys == nil {
		out.Keys = core.KeySet{}
	}
	if out.Unused == nil {
		out.Unused = core.KeySet{}
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []core.Diagnostic{}
	}
	if out.Scanned == nil {
		out.Scanned = []string{}
	}
	return &out
}
