// Package bibtex extracts entries from BibTeX reference databases.
//
// The parser validates the structure of every record (braces, quoted
// strings, field assignments, value concatenation) but keeps only what
// detection needs: the entry type, the citation key and where the key sits.
// Field values are checked and discarded.
//
// Text outside records is ignored, as BibTeX does. Lines starting with '%'
// outside records are treated as comments so that stray '@' characters in
// them do not open a record.
package bibtex

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/aretw0/citeclean/pkg/core"
)

const eof rune = -1

// Database is the parsed content of one reference database.
type Database struct {
	Entries []core.Entry
	// Macros lists the names defined by @string records, in order.
	Macros []string
}

// Keys returns the citation keys of all entries in document order.
func (db *Database) Keys() core.KeySet {
	return core.KeysOf(db.Entries)
}

// Parse reads a whole reference database from r.
// Malformed input yields a *core.ParseError and no database.
func Parse(r io.Reader) (*Database, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}

// ParseString parses a reference database held in memory.
func ParseString(text string) (*Database, error) {
	p := &parser{
		src:  []rune(text),
		line: 1,
		col:  1,
		db:   &Database{Entries: []core.Entry{}},
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.db, nil
}

// Keys extracts the citation keys of text.
func Keys(text string) (core.KeySet, error) {
	db, err := ParseString(text)
	if err != nil {
		return nil, err
	}
	return db.Keys(), nil
}

// Extractor implements core.KeyExtractor.
type Extractor struct{}

// NewExtractor creates a BibTeX key extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses text and returns its entries.
func (e *Extractor) Extract(text string) ([]core.Entry, error) {
	db, err := ParseString(text)
	if err != nil {
		return nil, err
	}
	return db.Entries, nil
}

var _ core.KeyExtractor = (*Extractor)(nil)

type parser struct {
	src  []rune
	pos  int
	line int
	col  int
	db   *Database
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return eof
	}
	return p.src[p.pos]
}

func (p *parser) next() rune {
	r := p.peek()
	if r == eof {
		return eof
	}
	p.pos++
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

func (p *parser) errorf(line, col int, format string, args ...any) error {
	return &core.ParseError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for unicode.IsSpace(p.peek()) {
		p.next()
	}
}

func (p *parser) skipLine() {
	for r := p.peek(); r != eof && r != '\n'; r = p.peek() {
		p.next()
	}
}

func (p *parser) parse() error {
	atLineStart := true
	for {
		r := p.peek()
		switch {
		case r == eof:
			return nil
		case r == '@':
			if err := p.parseRecord(); err != nil {
				return err
			}
			atLineStart = false
		case r == '%' && atLineStart:
			p.skipLine()
		case r == '\n':
			p.next()
			atLineStart = true
		case unicode.IsSpace(r):
			p.next()
		default:
			p.next()
			atLineStart = false
		}
	}
}

// parseRecord consumes one '@' record: an entry, @string, @preamble or @comment.
func (p *parser) parseRecord() error {
	line, col := p.line, p.col
	p.next() // '@'
	p.skipSpace()

	typ := p.readIdent()
	if typ == "" {
		return p.errorf(line, col, "expected entry type after '@'")
	}
	kind := strings.ToLower(typ)
	p.skipSpace()

	if kind == "comment" {
		return p.skipComment()
	}

	var closer rune
	switch p.peek() {
	case '{':
		closer = '}'
	case '(':
		closer = ')'
	default:
		return p.errorf(p.line, p.col, "expected '{' or '(' after @%s", typ)
	}
	p.next()

	switch kind {
	case "string":
		return p.parseStringBody(typ, closer, line, col)
	case "preamble":
		return p.parsePreambleBody(typ, closer, line, col)
	default:
		return p.parseEntryBody(kind, closer, line, col)
	}
}

func (p *parser) parseEntryBody(kind string, closer rune, line, col int) error {
	p.skipSpace()
	keyLine, keyCol := p.line, p.col
	key := p.readKey()
	if key == "" {
		return p.errorf(keyLine, keyCol, "missing citation key in @%s entry", kind)
	}

	p.db.Entries = append(p.db.Entries, core.Entry{
		Type:   kind,
		Key:    key,
		Line:   keyLine,
		Column: keyCol,
	})

	for {
		p.skipSpace()
		switch r := p.peek(); r {
		case closer:
			p.next()
			return nil
		case ',':
			p.next()
			p.skipSpace()
			if p.peek() == closer {
				p.next()
				return nil
			}
			if err := p.parseField(closer); err != nil {
				return err
			}
		case eof:
			return p.errorf(line, col, "unterminated @%s entry %q", kind, key)
		default:
			return p.errorf(p.line, p.col, "expected ',' or '%c' in @%s entry %q, found %q", closer, kind, key, r)
		}
	}
}

func (p *parser) parseStringBody(typ string, closer rune, line, col int) error {
	p.skipSpace()
	nameLine, nameCol := p.line, p.col
	name := p.readIdent()
	if name == "" {
		return p.errorf(nameLine, nameCol, "expected macro name in @%s", typ)
	}
	if err := p.parseAssignment(name); err != nil {
		return err
	}
	p.db.Macros = append(p.db.Macros, name)
	return p.expectCloser(typ, closer, line, col)
}

func (p *parser) parsePreambleBody(typ string, closer rune, line, col int) error {
	if err := p.parseValue(); err != nil {
		return err
	}
	return p.expectCloser(typ, closer, line, col)
}

func (p *parser) expectCloser(typ string, closer rune, line, col int) error {
	p.skipSpace()
	switch r := p.peek(); r {
	case closer:
		p.next()
		return nil
	case eof:
		return p.errorf(line, col, "unterminated @%s", typ)
	default:
		return p.errorf(p.line, p.col, "expected '%c' to close @%s, found %q", closer, typ, r)
	}
}

// skipComment drops an @comment record: a balanced group, or the rest of the line.
func (p *parser) skipComment() error {
	switch p.peek() {
	case '{':
		return p.skipGroup('{', '}')
	case '(':
		return p.skipGroup('(', ')')
	default:
		p.skipLine()
		return nil
	}
}

func (p *parser) parseField(closer rune) error {
	nameLine, nameCol := p.line, p.col
	name := p.readIdent()
	if name == "" {
		if r := p.peek(); r == eof {
			return p.errorf(nameLine, nameCol, "unexpected end of input, expected field name")
		}
		return p.errorf(nameLine, nameCol, "expected field name, found %q", p.peek())
	}
	return p.parseAssignment(name)
}

func (p *parser) parseAssignment(name string) error {
	p.skipSpace()
	if r := p.peek(); r != '=' {
		return p.errorf(p.line, p.col, "expected '=' after field %q", name)
	}
	p.next()
	return p.parseValue()
}

// parseValue consumes piece ('#' piece)* where a piece is a braced group,
// a quoted string, a number or a macro name.
func (p *parser) parseValue() error {
	for {
		p.skipSpace()
		line, col := p.line, p.col
		switch r := p.peek(); {
		case r == '{':
			if err := p.skipGroup('{', '}'); err != nil {
				return err
			}
		case r == '"':
			if err := p.skipQuoted(); err != nil {
				return err
			}
		case unicode.IsDigit(r):
			for unicode.IsDigit(p.peek()) {
				p.next()
			}
		case isIdentStart(r):
			p.readIdent()
		case r == eof:
			return p.errorf(line, col, "unexpected end of input in field value")
		default:
			return p.errorf(line, col, "unexpected %q in field value", r)
		}

		p.skipSpace()
		if p.peek() != '#' {
			return nil
		}
		p.next()
	}
}

// skipGroup consumes a group opened by open, honouring nesting.
func (p *parser) skipGroup(open, closer rune) error {
	line, col := p.line, p.col
	p.next()
	depth := 1
	for depth > 0 {
		switch p.next() {
		case eof:
			return p.errorf(line, col, "unbalanced '%c': never closed", open)
		case open:
			depth++
		case closer:
			depth--
		}
	}
	return nil
}

func (p *parser) skipQuoted() error {
	line, col := p.line, p.col
	p.next() // opening quote
	depth := 0
	for {
		braceLine, braceCol := p.line, p.col
		switch p.next() {
		case eof:
			return p.errorf(line, col, "unterminated quoted value")
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return p.errorf(braceLine, braceCol, "unbalanced '}' in quoted value")
			}
			depth--
		case '"':
			if depth == 0 {
				return nil
			}
		}
	}
}

// readKey reads a citation key. Keys end at whitespace, a comma or any
// character that is structural in BibTeX.
func (p *parser) readKey() string {
	var sb strings.Builder
	for r := p.peek(); r != eof && !unicode.IsSpace(r) && !strings.ContainsRune(`,{}()"=#%\`, r); r = p.peek() {
		sb.WriteRune(p.next())
	}
	return sb.String()
}

func (p *parser) readIdent() string {
	if !isIdentStart(p.peek()) {
		return ""
	}
	var sb strings.Builder
	for isIdentPart(p.peek()) {
		sb.WriteRune(p.next())
	}
	return sb.String()
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_-:.+/'", r)
}
