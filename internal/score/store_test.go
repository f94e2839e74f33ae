package score

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"photoid/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "scores.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadLedgerEmpty(t *testing.T) {
	store := openTestStore(t)

	l, err := store.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("got %d records, want 0", l.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)

	l := NewLedger()
	l.Set("fox", Record{Correct: 3, Total: 5})
	l.Set("wolf", Record{Correct: 1, Total: 2})

	if err := store.SaveLedger(l); err != nil {
		t.Fatalf("SaveLedger: %v", err)
	}

	got, err := store.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d records, want 2", got.Len())
	}
	if rec, _ := got.Get("fox"); rec != (Record{Correct: 3, Total: 5}) {
		t.Errorf("fox = %+v, want {3 5}", rec)
	}
	if rec, _ := got.Get("wolf"); rec != (Record{Correct: 1, Total: 2}) {
		t.Errorf("wolf = %+v, want {1 2}", rec)
	}
}

func TestSaveLedgerIdempotent(t *testing.T) {
	store := openTestStore(t)

	l := NewLedger()
	l.Set("fox", Record{Correct: 2, Total: 2})

	if err := store.SaveLedger(l); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.SaveLedger(l); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("got %d records, want 1", got.Len())
	}
}

func TestRecordSessionMergesScores(t *testing.T) {
	store := openTestStore(t)

	tally := quiz.Tally{
		PerID: map[string]quiz.Record{
			"fox":  {Correct: 2, Total: 3},
			"wolf": {Correct: 1, Total: 1},
		},
		Answered: 4,
		Correct:  3,
	}
	if err := store.RecordSession(uuid.NewString(), tally, time.Now()); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}

	second := quiz.Tally{
		PerID:    map[string]quiz.Record{"fox": {Correct: 1, Total: 2}},
		Answered: 2,
		Correct:  1,
	}
	if err := store.RecordSession(uuid.NewString(), second, time.Now()); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}

	l, err := store.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if rec, _ := l.Get("fox"); rec != (Record{Correct: 3, Total: 5}) {
		t.Errorf("fox = %+v, want {3 5}", rec)
	}
	if rec, _ := l.Get("wolf"); rec != (Record{Correct: 1, Total: 1}) {
		t.Errorf("wolf = %+v, want {1 1}", rec)
	}
}

func TestRecordSessionAllCorrect(t *testing.T) {
	store := openTestStore(t)

	// n=3 session, all answers correct, merged into an empty ledger.
	tally := quiz.Tally{
		PerID: map[string]quiz.Record{
			"fox":  {Correct: 2, Total: 2},
			"bear": {Correct: 1, Total: 1},
		},
		Answered: 3,
		Correct:  3,
	}
	if err := store.RecordSession(uuid.NewString(), tally, time.Now()); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}

	l, err := store.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}

	total := 0
	for _, id := range l.IDs() {
		acc, err := l.Accuracy(id)
		if err != nil {
			t.Fatalf("Accuracy(%s): %v", id, err)
		}
		if acc != 1.0 {
			t.Errorf("accuracy(%s) = %v, want 1.0", id, acc)
		}
		rec, _ := l.Get(id)
		total += rec.Total
	}
	if total != 3 {
		t.Errorf("summed total = %d, want 3", total)
	}
}

func TestHistoryOrdered(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	tallies := []quiz.Tally{
		{PerID: map[string]quiz.Record{"fox": {Correct: 1, Total: 2}}, Answered: 2, Correct: 1},
		{PerID: map[string]quiz.Record{"fox": {Correct: 2, Total: 2}}, Answered: 2, Correct: 2},
	}
	// Insert newest first to verify ordering comes from the query.
	if err := store.RecordSession("sess-new", tallies[1], base.Add(30*time.Minute)); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	if err := store.RecordSession("sess-old", tallies[0], base); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}

	history, err := store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d sessions, want 2", len(history))
	}
	if history[0].ID != "sess-old" || history[1].ID != "sess-new" {
		t.Errorf("history order = [%s %s], want [sess-old sess-new]", history[0].ID, history[1].ID)
	}
	if got := history[0].Accuracy(); got != 0.5 {
		t.Errorf("first session accuracy = %v, want 0.5", got)
	}
	if got := history[1].Accuracy(); got != 1.0 {
		t.Errorf("second session accuracy = %v, want 1.0", got)
	}
}

func TestHistoryEmpty(t *testing.T) {
	store := openTestStore(t)

	history, err := store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("got %d sessions, want 0", len(history))
	}
}

func TestRecordSessionDuplicateIDFails(t *testing.T) {
	store := openTestStore(t)

	tally := quiz.Tally{
		PerID:    map[string]quiz.Record{"fox": {Correct: 1, Total: 1}},
		Answered: 1,
		Correct:  1,
	}
	if err := store.RecordSession("sess-1", tally, time.Now()); err != nil {
		t.Fatalf("first RecordSession: %v", err)
	}
	if err := store.RecordSession("sess-1", tally, time.Now()); err == nil {
		t.Fatal("duplicate session id should fail")
	}

	// The failed transaction must not have touched the scores.
	l, err := store.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if rec, _ := l.Get("fox"); rec != (Record{Correct: 1, Total: 1}) {
		t.Errorf("fox = %+v, want {1 1} after failed merge", rec)
	}
}
