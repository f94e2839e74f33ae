// Package score accumulates quiz results per individual across sessions and
// persists them.
package score

import (
	"errors"
	"fmt"
	"sort"

	"photoid/internal/quiz"
)

// ErrNoData is returned when accuracy is requested for an individual with no
// recorded attempts.
var ErrNoData = errors.New("no recorded attempts for individual")

// Record holds the cumulative correct/total counts for one individual.
type Record struct {
	Correct int
	Total   int
}

// Ledger maps individual identifiers to their cumulative records. It is
// mutated only by merging completed session tallies and is owned by a single
// run of the program.
type Ledger struct {
	records map[string]Record
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]Record)}
}

// Merge adds one session's per-individual deltas, creating records for
// individuals not previously seen. Merging is additive and commutative.
func (l *Ledger) Merge(tally quiz.Tally) {
	for id, rec := range tally.PerID {
		cur := l.records[id]
		cur.Correct += rec.Correct
		cur.Total += rec.Total
		l.records[id] = cur
	}
}

// Set replaces the record for one individual. Used when seeding a ledger
// from persisted state.
func (l *Ledger) Set(id string, rec Record) {
	l.records[id] = rec
}

// Get returns the record for an individual.
func (l *Ledger) Get(id string) (Record, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

// IDs returns all individuals with records, sorted.
func (l *Ledger) IDs() []string {
	ids := make([]string, 0, len(l.records))
	for id := range l.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of individuals with records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Accuracy returns correct/total for one individual. An individual with no
// record or a zero total yields ErrNoData, never a division by zero.
func (l *Ledger) Accuracy(id string) (float64, error) {
	rec, ok := l.records[id]
	if !ok || rec.Total == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoData, id)
	}
	return float64(rec.Correct) / float64(rec.Total), nil
}

// Snapshot returns a copy of the full mapping.
func (l *Ledger) Snapshot() map[string]Record {
	out := make(map[string]Record, len(l.records))
	for id, rec := range l.records {
		out[id] = rec
	}
	return out
}
