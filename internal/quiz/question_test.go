package quiz

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoid/internal/catalog"
)

// buildCatalog writes photo files for each individual and builds a catalog
// over them.
func buildCatalog(t *testing.T, photosPer map[string]int) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	for id, n := range photosPer {
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("%s_%02d.jpg", id, i)
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpeg"), 0o644))
		}
	}
	c, err := catalog.Build([]string{dir}, catalog.Filter{})
	require.NoError(t, err)
	return c
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestNextWellFormed(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 3, "wolf": 2, "bear": 2, "lynx": 1})
	gen := NewGenerator(cat, 4, testRNG())

	for i := 0; i < 100; i++ {
		q, err := gen.Next(Random(), Avoid{})
		require.NoError(t, err)

		assert.Len(t, q.Candidates, 4)
		seen := make(map[string]int)
		for _, c := range q.Candidates {
			seen[c]++
		}
		for c, n := range seen {
			assert.Equal(t, 1, n, "candidate %q appears %d times", c, n)
		}
		assert.Equal(t, 1, seen[q.Correct], "correct id must appear exactly once")
		assert.Equal(t, q.Correct, q.Photo.Individual)
		assert.Contains(t, q.Candidates, q.Correct)
	}
}

func TestNextThreeChoicesNeverFails(t *testing.T) {
	// fox 3 photos, wolf 2, bear 2; 3 candidate slots.
	cat := buildCatalog(t, map[string]int{"fox": 3, "wolf": 2, "bear": 2})
	gen := NewGenerator(cat, 3, testRNG())

	for i := 0; i < 50; i++ {
		q, err := gen.Next(Random(), Avoid{})
		require.NoError(t, err)
		require.Len(t, q.Candidates, 3)
		seen := make(map[string]bool)
		for _, c := range q.Candidates {
			require.False(t, seen[c], "duplicate candidate %q", c)
			seen[c] = true
		}
		require.True(t, seen[q.Correct])
	}
}

func TestNextTargeted(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 3, "wolf": 2, "bear": 2})
	gen := NewGenerator(cat, 3, testRNG())

	for i := 0; i < 20; i++ {
		q, err := gen.Next(Targeted("wolf"), Avoid{})
		require.NoError(t, err)
		assert.Equal(t, "wolf", q.Correct)
		assert.Equal(t, "wolf", q.Photo.Individual)
	}
}

func TestNextTargetedUnknown(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 2, "wolf": 2})
	gen := NewGenerator(cat, 2, testRNG())

	_, err := gen.Next(Targeted("moose"), Avoid{})
	assert.ErrorIs(t, err, ErrUnknownIndividual)
}

func TestNextTargetedEmptyID(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 2, "wolf": 2})
	gen := NewGenerator(cat, 2, testRNG())

	// An empty target must fail, not silently turn into random mode.
	_, err := gen.Next(Targeted(""), Avoid{})
	assert.ErrorIs(t, err, ErrUnknownIndividual)
}

func TestNextAvoidWithOverlappingFolders(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "fox_01.jpg"), []byte("jpeg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wolf_01.jpg"), []byte("jpeg"), 0o644))

	// A folder plus its own subfolder must not leave fox with duplicate
	// photo entries that break repeat-avoidance.
	cat, err := catalog.Build([]string{dir, sub}, catalog.Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, cat.Count("fox"))

	gen := NewGenerator(cat, 2, testRNG())
	q1, err := gen.Next(Targeted("fox"), Avoid{})
	require.NoError(t, err)

	q2, err := gen.Next(Targeted("fox"), Avoid{Photo: q1.Photo.Path})
	require.NoError(t, err)
	assert.Equal(t, q1.Photo.Path, q2.Photo.Path)
}

func TestNextInsufficientPhotos(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 5})
	gen := NewGenerator(cat, 2, testRNG())

	_, err := gen.Next(Random(), Avoid{})
	assert.ErrorIs(t, err, ErrInsufficientPhotos)
}

func TestNextInsufficientCandidates(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 2, "wolf": 2})
	gen := NewGenerator(cat, 4, testRNG())

	_, err := gen.Next(Random(), Avoid{})
	assert.ErrorIs(t, err, ErrInsufficientCandidates)
}

func TestNextAvoidsPreviousPhoto(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 3, "wolf": 2})
	gen := NewGenerator(cat, 2, testRNG())

	var prev string
	for i := 0; i < 50; i++ {
		q, err := gen.Next(Random(), Avoid{Photo: prev})
		require.NoError(t, err)
		if prev != "" {
			assert.NotEqual(t, prev, q.Photo.Path, "reference photo repeated immediately")
		}
		prev = q.Photo.Path
	}
}

func TestNextAllowsRepeatWithSinglePhoto(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 1, "wolf": 1})
	gen := NewGenerator(cat, 2, testRNG())

	q1, err := gen.Next(Targeted("fox"), Avoid{})
	require.NoError(t, err)

	// fox has a single photo: the soft constraint yields, not fails.
	q2, err := gen.Next(Targeted("fox"), Avoid{Photo: q1.Photo.Path})
	require.NoError(t, err)
	assert.Equal(t, q1.Photo.Path, q2.Photo.Path)
}

func TestNextDeterministicWithSeed(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 3, "wolf": 2, "bear": 2})

	a := NewGenerator(cat, 3, rand.New(rand.NewSource(7)))
	b := NewGenerator(cat, 3, rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		qa, err := a.Next(Random(), Avoid{})
		require.NoError(t, err)
		qb, err := b.Next(Random(), Avoid{})
		require.NoError(t, err)
		assert.Equal(t, qa, qb)
	}
}

func TestNewGeneratorDefaults(t *testing.T) {
	cat := buildCatalog(t, map[string]int{"fox": 1, "wolf": 1, "bear": 1, "lynx": 1})

	gen := NewGenerator(cat, 0, nil)
	assert.Equal(t, DefaultChoices, gen.Choices())

	q, err := gen.Next(Random(), Avoid{})
	require.NoError(t, err)
	assert.Len(t, q.Candidates, DefaultChoices)
}
