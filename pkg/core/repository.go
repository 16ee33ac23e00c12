package core

import "context"

// KeyExtractor parses reference database text into its entries.
// Implementations must fail with *ParseError on malformed input and never
// return a partial list.
type KeyExtractor interface {
	Extract(text string) ([]Entry, error)
}

// SourceRepository discovers and reads manuscripts.
// Adhering to this interface keeps detection independent of where
// manuscripts live (local tree, git index, in-memory fixtures).
type SourceRepository interface {
	// List returns the locators of every candidate manuscript.
	List(ctx context.Context) ([]string, error)

	// Read returns the full text of one manuscript.
	Read(ctx context.Context, path string) (SourceFile, error)
}

// Locator turns unused keys into warning markers on the original document.
type Locator interface {
	Locate(doc Document, unused KeySet) []Diagnostic
}
