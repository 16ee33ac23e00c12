package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config holds the tunables of the detection service.
type Config struct {
	ReadPolicy  ReadPolicy
	Concurrency int
	Logger      *slog.Logger
}

// Service runs unused-reference detection.
// It holds no state between runs apart from counters exposed through State.
type Service struct {
	extractor KeyExtractor
	repo      SourceRepository
	locator   Locator
	scanner   *Scanner
	config    Config

	mu      sync.RWMutex
	runs    int
	lastRun *time.Time
}

// NewService creates a new Service.
func NewService(extractor KeyExtractor, repo SourceRepository, locator Locator, config Config) *Service {
	return &Service{
		extractor: extractor,
		repo:      repo,
		locator:   locator,
		scanner:   NewScanner(repo, config.ReadPolicy, config.Concurrency, config.Logger),
		config:    config,
	}
}

// IsReferenceDatabase reports whether path names a document Detect accepts.
func IsReferenceDatabase(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ReferenceDatabaseExt)
}

// Entries extracts the entries of doc without scanning any manuscript.
func (s *Service) Entries(doc Document) ([]Entry, error) {
	if !IsReferenceDatabase(doc.Path) {
		return nil, ErrUnsupportedDocument
	}
	entries, err := s.extractor.Extract(doc.Text)
	if err != nil {
		return nil, s.wrapParseError(doc, err)
	}
	return entries, nil
}

// Detect reports the keys of doc that no manuscript references.
//
// Workflow:
//  1. Reject anything that is not a reference database.
//  2. Extract keys; a parse error aborts the run.
//  3. Short-circuit on an empty key set (nothing can be unused).
//  4. Discover and scan manuscripts concurrently.
//  5. Diff and position the warnings on doc.
func (s *Service) Detect(ctx context.Context, doc Document) (*Report, error) {
	entries, err := s.Entries(doc)
	if err != nil {
		return nil, err
	}
	defer s.recordRun()

	keys := KeysOf(entries)
	report := &Report{
		Document:    doc.Path,
		Keys:        keys,
		Unused:      KeySet{},
		Diagnostics: []Diagnostic{},
		Scanned:     []string{},
	}
	if len(keys) == 0 {
		if s.config.Logger != nil {
			s.config.Logger.Debug("no entries in document, nothing to check", "path", doc.Path)
		}
		return report, nil
	}

	sources, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover manuscripts: %w", err)
	}
	if s.config.Logger != nil {
		s.config.Logger.Debug("discovered manuscripts", "count", len(sources), "keys", len(keys))
	}

	scan, err := s.scanner.Scan(ctx, sources, keys)
	if err != nil {
		return nil, err
	}

	report.Unused = UnusedKeys(keys, scan.Usage)
	report.Scanned = scan.Scanned
	report.Skipped = scan.Skipped
	if s.locator != nil && len(report.Unused) > 0 {
		report.Diagnostics = s.locator.Locate(doc, report.Unused)
	}

	return report, nil
}

func (s *Service) wrapParseError(doc Document, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Path == "" {
		pe.Path = doc.Path
	}
	return fmt.Errorf("failed to extract keys: %w", err)
}

func (s *Service) recordRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.runs++
	s.lastRun = &now
}
