// Package citeclean is the Composition Root for the citeclean tool.
//
// It connects the detection core (Domain Layer) with the BibTeX parser, the
// manuscript sources and the reporting adapter using the Hexagonal
// Architecture pattern.
//
// A reference database (.bib) declares entries identified by keys. Every
// .tex manuscript of the project is scanned concurrently and any key that
// never appears as a literal, case-sensitive substring is reported as unused,
// with a warning positioned on the entry in the database.
//
// Features:
//
//   - **Explicit documents**: detection takes the database path and text as arguments.
//   - **Concurrent scan**: manuscripts are read in a bounded task group and merged by set union.
//   - **Pluggable sources**: the filesystem adapter walks the tree or lists git-tracked files; any `core.SourceRepository` can be injected.
//   - **Machine output**: reports render as text, JSON, YAML or CSV.
//
// Matching is substring based: a key "ab" counts as cited by "cabbage".
//
// Usage:
//
//	rep, err := citeclean.Detect(ctx, "thesis/refs.bib",
//		citeclean.WithExclude("build"),
//		citeclean.WithLogger(logger),
//	)
//
//	for _, d := range rep.Diagnostics {
//		fmt.Printf("%s:%d:%d: %s\n", d.Path, d.Line, d.Column, d.Message)
//	}
package citeclean
