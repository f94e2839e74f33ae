// Package quiz generates photo identification questions and runs bounded
// quiz sessions over a photo catalog.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"photoid/internal/catalog"
)

var (
	// ErrInsufficientPhotos is returned when the catalog cannot supply both a
	// prompt individual and at least one decoy.
	ErrInsufficientPhotos = errors.New("need at least 2 individuals with photos")

	// ErrInsufficientCandidates is returned when the catalog holds fewer
	// individuals than the configured candidate count.
	ErrInsufficientCandidates = errors.New("fewer individuals than candidate slots")

	// ErrUnknownIndividual is returned for a targeted question about an
	// individual that is not in the catalog.
	ErrUnknownIndividual = errors.New("individual not in catalog")
)

// DefaultChoices is the default candidate list length.
const DefaultChoices = 4

// Question is one quiz prompt: a reference photo and a shuffled candidate
// list containing the correct identifier exactly once.
type Question struct {
	Photo      catalog.Photo
	Correct    string
	Candidates []string
}

// Mode selects how the correct individual is chosen.
type Mode struct {
	targeted bool
	target   string
}

// Random picks the correct individual uniformly at random.
func Random() Mode { return Mode{} }

// Targeted always asks about the given individual. An empty or unknown id
// fails at Next with ErrUnknownIndividual rather than falling back to
// random selection.
func Targeted(id string) Mode { return Mode{targeted: true, target: id} }

// Avoid carries repeat-avoidance state from the previous question. The
// constraint is soft: an individual with a single photo may repeat it.
type Avoid struct {
	Photo string
}

// Generator produces questions from an immutable catalog. It keeps no
// per-session state; repeat-avoidance belongs to the Session.
type Generator struct {
	cat     *catalog.Catalog
	choices int
	rng     *rand.Rand
}

// NewGenerator creates a generator with the given candidate list length.
// choices < 2 falls back to DefaultChoices. A nil rng gets a time-seeded
// source; tests inject a seeded one.
func NewGenerator(cat *catalog.Catalog, choices int, rng *rand.Rand) *Generator {
	if choices < 2 {
		choices = DefaultChoices
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{cat: cat, choices: choices, rng: rng}
}

// Choices returns the configured candidate list length.
func (g *Generator) Choices() int { return g.choices }

// Next produces one well-formed question. The correct individual is chosen
// per mode, the reference photo uniformly among its photos (avoiding the
// previous photo when possible), decoys uniformly without replacement, and
// the candidate list is uniformly shuffled.
func (g *Generator) Next(mode Mode, avoid Avoid) (Question, error) {
	ids := g.cat.IDs()
	if len(ids) < 2 {
		return Question{}, ErrInsufficientPhotos
	}
	if len(ids) < g.choices {
		return Question{}, fmt.Errorf("%w: have %d, want %d", ErrInsufficientCandidates, len(ids), g.choices)
	}

	var correct string
	if mode.targeted {
		if !g.cat.Has(mode.target) {
			return Question{}, fmt.Errorf("%w: %q", ErrUnknownIndividual, mode.target)
		}
		correct = mode.target
	} else {
		correct = ids[g.rng.Intn(len(ids))]
	}

	photo := g.pickPhoto(correct, avoid.Photo)

	decoys := make([]string, 0, len(ids)-1)
	for _, id := range ids {
		if id != correct {
			decoys = append(decoys, id)
		}
	}
	g.rng.Shuffle(len(decoys), func(i, j int) {
		decoys[i], decoys[j] = decoys[j], decoys[i]
	})

	candidates := append(decoys[:g.choices-1:g.choices-1], correct)
	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	return Question{Photo: photo, Correct: correct, Candidates: candidates}, nil
}

// pickPhoto draws a reference photo for the individual, skipping the avoided
// path when an alternative exists. If every entry matches the avoided path
// the unfiltered list is used, so the draw never runs on an empty slice.
func (g *Generator) pickPhoto(id, avoidPath string) catalog.Photo {
	photos := g.cat.PhotosOf(id)
	if avoidPath != "" && len(photos) > 1 {
		usable := make([]catalog.Photo, 0, len(photos))
		for _, p := range photos {
			if p.Path != avoidPath {
				usable = append(usable, p)
			}
		}
		if len(usable) > 0 {
			photos = usable
		}
	}
	return photos[g.rng.Intn(len(photos))]
}
