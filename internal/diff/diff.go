package diff

import (
	"context"
	"errors"
	"fmt"

	"locmerge/internal/filewalker"
	"locmerge/internal/stringtable"
	"locmerge/internal/worker"

	"github.com/rs/zerolog/log"
)

// DefaultWorkers is the number of pairs loaded concurrently.
const DefaultWorkers = 8

// ErrNoMatchingFiles is returned when the two content trees share no table file.
var ErrNoMatchingFiles = errors.New("no matching string table files found")

// Stats summarizes one corpus scan.
type Stats struct {
	Pairs      int
	Skipped    int // pairs where either side is not a string table
	Changes    int
	Collisions int // identifiers produced by more than one pair
}

// Scanner compares the enhanced content tree against the original one.
type Scanner struct {
	walker       *filewalker.Walker
	originalRoot string
	enhancedRoot string
	reservedName string
	// Workers bounds how many pairs are loaded at once.
	Workers int
}

// NewScanner creates a scanner over the two content roots. Files named
// reservedName are never compared.
func NewScanner(originalRoot, enhancedRoot, reservedName string) *Scanner {
	return &Scanner{
		walker:       filewalker.NewWalker(),
		originalRoot: originalRoot,
		enhancedRoot: enhancedRoot,
		reservedName: reservedName,
		Workers:      DefaultWorkers,
	}
}

// Pairs lists the enhanced/original file pairs that will be compared.
func (s *Scanner) Pairs() ([]filewalker.Pair, error) {
	enhanced, err := s.walker.Walk(s.enhancedRoot)
	if err != nil {
		return nil, fmt.Errorf("walk enhanced tree: %w", err)
	}
	original, err := s.walker.Walk(s.originalRoot)
	if err != nil {
		return nil, fmt.Errorf("walk original tree: %w", err)
	}

	pairs := filewalker.MatchByName(enhanced, original, s.reservedName)
	if len(pairs) == 0 {
		return nil, ErrNoMatchingFiles
	}
	return pairs, nil
}

// Collect diffs every matched pair and merges the results into one mapping.
// Pairs are loaded concurrently but merged in pair order, so when two pairs
// yield the same identifier the later pair wins.
func (s *Scanner) Collect(ctx context.Context) (map[string]stringtable.Change, Stats, error) {
	var stats Stats

	pairs, err := s.Pairs()
	if err != nil {
		return nil, stats, err
	}
	stats.Pairs = len(pairs)

	pool := worker.NewPool(s.Workers, func(_ context.Context, p filewalker.Pair) (map[string]stringtable.Change, error) {
		return ComparePair(p)
	})
	results := pool.Execute(ctx, pairs)

	all := make(map[string]stringtable.Change)
	for _, r := range results {
		p := r.Input
		if errors.Is(r.Err, stringtable.ErrNotStringTable) {
			log.Warn().Str("file", p.Enhanced.Path).Msg("Not a string table, skipping")
			stats.Skipped++
			continue
		}
		if r.Err != nil {
			return nil, stats, r.Err
		}

		for id, c := range r.Result {
			if _, exists := all[id]; exists {
				stats.Collisions++
				log.Debug().Str("id", id).Str("file", p.Enhanced.Path).Msg("Identifier already seen, overwriting")
			}
			all[id] = c
		}
	}
	stats.Changes = len(all)

	log.Info().
		Int("pairs", stats.Pairs).
		Int("skipped", stats.Skipped).
		Int("collisions", stats.Collisions).
		Int("changes", stats.Changes).
		Msg("Corpus scan complete")

	return all, stats, nil
}

// ComparePair loads both sides of a pair and diffs them. Read and syntax
// errors win over shape errors, so a broken file is never silently skipped.
func ComparePair(p filewalker.Pair) (map[string]stringtable.Change, error) {
	enhanced, enhErr := stringtable.Load(p.Enhanced.Path)
	original, oriErr := stringtable.Load(p.Original.Path)

	for _, err := range []error{enhErr, oriErr} {
		if err != nil && !errors.Is(err, stringtable.ErrNotStringTable) {
			return nil, err
		}
	}
	if enhErr != nil {
		return nil, enhErr
	}
	if oriErr != nil {
		return nil, oriErr
	}

	return stringtable.Diff(enhanced, original), nil
}
