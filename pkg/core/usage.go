package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ReadPolicy decides what happens when a manuscript cannot be read.
type ReadPolicy string

const (
	// ReadPolicyAbort fails the whole scan on the first unreadable manuscript.
	ReadPolicyAbort ReadPolicy = "abort"
	// ReadPolicySkip logs the failure, records the file as skipped and continues.
	ReadPolicySkip ReadPolicy = "skip"
)

// ParseReadPolicy validates a policy name. The empty string means abort.
func ParseReadPolicy(s string) (ReadPolicy, error) {
	switch ReadPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReadPolicyAbort:
		return ReadPolicyAbort, nil
	case ReadPolicySkip:
		return ReadPolicySkip, nil
	default:
		return "", fmt.Errorf("unknown read policy %q (want %q or %q)", s, ReadPolicyAbort, ReadPolicySkip)
	}
}

// ScanResult is the merged outcome of scanning every manuscript.
type ScanResult struct {
	Usage   UsageResult
	Scanned []string
	Skipped []Skipped
}

// Scanner computes which keys occur in a set of manuscripts.
// Each manuscript is read and filtered by its own goroutine; the per-file
// hit sets are joined and unioned once all tasks finish, so the result does
// not depend on completion order.
type Scanner struct {
	repo        SourceRepository
	policy      ReadPolicy
	concurrency int
	logger      *slog.Logger
}

// NewScanner creates a Scanner reading through repo.
// A concurrency of zero or less means one task per manuscript with no limit.
func NewScanner(repo SourceRepository, policy ReadPolicy, concurrency int, logger *slog.Logger) *Scanner {
	if policy == "" {
		policy = ReadPolicyAbort
	}
	return &Scanner{
		repo:        repo,
		policy:      policy,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Scan reads every source and reports, for each key, whether it was found in any of them.
func (s *Scanner) Scan(ctx context.Context, sources []string, keys KeySet) (*ScanResult, error) {
	usage := make(UsageResult, len(keys))
	for _, k := range keys {
		usage[k] = false
	}
	result := &ScanResult{Usage: usage, Scanned: []string{}}
	if len(keys) == 0 || len(sources) == 0 {
		return result, nil
	}

	distinct := keys.Distinct()
	hits := make([]KeySet, len(sources))
	skipped := make([]*Skipped, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, path := range sources {
		g.Go(func() error {
			src, err := s.repo.Read(gctx, path)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				ioErr := &IOError{Path: path, Err: err}
				if s.policy == ReadPolicySkip && !errors.Is(err, context.Canceled) {
					if s.logger != nil {
						s.logger.Warn("skipping unreadable manuscript", "path", path, "error", err)
					}
					skipped[i] = &Skipped{Path: path, Error: err.Error()}
					return nil
				}
				return ioErr
			}

			hits[i] = FindKeys(src.Text, distinct)
			if s.logger != nil {
				s.logger.Debug("scanned manuscript", "path", path, "hits", len(hits[i]))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, path := range sources {
		if skipped[i] != nil {
			result.Skipped = append(result.Skipped, *skipped[i])
			continue
		}
		result.Scanned = append(result.Scanned, path)
		for _, k := range hits[i] {
			usage[k] = true
		}
	}

	return result, nil
}

// FindKeys returns the keys occurring anywhere in text.
// Matching is case-sensitive and ignores word boundaries: "ab" is found in "cabbage".
func FindKeys(text string, keys KeySet) KeySet {
	var found KeySet
	for _, k := range keys {
		if strings.Contains(text, k) {
			found = append(found, k)
		}
	}
	return found
}

// UnusedKeys returns the keys never referenced, in KeySet order with duplicates kept.
func UnusedKeys(keys KeySet, usage UsageResult) KeySet {
	unused := make(KeySet, 0)
	for _, k := range keys {
		if !usage[k] {
			unused = append(unused, k)
		}
	}
	return unused
}
