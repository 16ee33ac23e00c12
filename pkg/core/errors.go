package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnsupportedDocument = errors.New("Only .bib files are supported")
	ErrUnusedReferences    = errors.New("unused references found")
	ErrEmptyPattern        = errors.New("manuscript pattern cannot be empty")
)

// ParseError reports malformed reference database syntax.
// Path is filled in by the service once the document identity is known.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// IOError reports a manuscript that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
