package quiz

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotConfigured is returned when starting a session that was created
	// without a positive question count.
	ErrNotConfigured = errors.New("session has no question count")

	// ErrOutOfSequence is returned for session operations invoked in the
	// wrong state.
	ErrOutOfSequence = errors.New("session operation out of sequence")

	// ErrDuplicateAnswer is returned when the current question already has an
	// answer recorded.
	ErrDuplicateAnswer = errors.New("current question already answered")
)

// State is the session lifecycle state.
type State int

const (
	Configured State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Answer records the response to one question.
type Answer struct {
	Question Question
	Chosen   string
	Correct  bool
	Ordinal  int // 1-based position in the session
}

// Record is a correct/total pair for one individual.
type Record struct {
	Correct int
	Total   int
}

// Tally is the per-individual outcome of a session, keyed by the true
// identity of each question.
type Tally struct {
	PerID    map[string]Record
	Answered int
	Correct  int
}

// Accuracy returns the overall fraction of correct answers, or 0 when
// nothing has been answered.
func (t Tally) Accuracy() float64 {
	if t.Answered == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Answered)
}

// Session runs a fixed-length sequence of questions. It is owned by a single
// caller and is not safe for concurrent use.
type Session struct {
	id        string
	gen       *Generator
	mode      Mode
	n         int
	state     State
	questions []Question
	answers   []Answer
}

// NewSession creates a session that will ask n questions in the given mode.
// With n <= 0 the session stays Configured and can never start; the caller
// must create a new one with a valid count.
func NewSession(gen *Generator, n int, mode Mode) *Session {
	return &Session{
		id:   uuid.NewString(),
		gen:  gen,
		mode: mode,
		n:    n,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Len returns the configured question count.
func (s *Session) Len() int { return s.n }

// Progress returns how many questions have been answered and the total.
func (s *Session) Progress() (answered, total int) {
	return len(s.answers), s.n
}

// Start transitions Configured -> Running and draws the first question.
func (s *Session) Start() error {
	if s.state != Configured {
		return ErrOutOfSequence
	}
	if s.n <= 0 {
		return ErrNotConfigured
	}
	q, err := s.gen.Next(s.mode, Avoid{})
	if err != nil {
		return err
	}
	s.questions = append(s.questions, q)
	s.state = Running
	return nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (Question, error) {
	if s.state != Running {
		return Question{}, ErrOutOfSequence
	}
	return s.questions[len(s.questions)-1], nil
}

// Submit records the answer to the current question and advances: it draws
// the next question, or transitions to Finished once n answers are recorded.
// Questions and answers stay in strict 1:1 generation order.
func (s *Session) Submit(chosen string) (Answer, error) {
	if s.state != Running {
		return Answer{}, ErrOutOfSequence
	}
	if len(s.answers) >= len(s.questions) {
		return Answer{}, ErrDuplicateAnswer
	}

	q := s.questions[len(s.questions)-1]
	ans := Answer{
		Question: q,
		Chosen:   chosen,
		Correct:  chosen == q.Correct,
		Ordinal:  len(s.answers) + 1,
	}
	s.answers = append(s.answers, ans)

	if len(s.answers) == s.n {
		s.state = Finished
		return ans, nil
	}

	next, err := s.gen.Next(s.mode, Avoid{Photo: q.Photo.Path})
	if err != nil {
		// The catalog preconditions held at Start, so this is unreachable
		// with an intact catalog; fail loudly rather than skip a question.
		return Answer{}, err
	}
	s.questions = append(s.questions, next)
	return ans, nil
}

// Answers returns the answers recorded so far, in order.
func (s *Session) Answers() []Answer {
	out := make([]Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// Tally computes the per-individual correct/total counts for the answers
// recorded so far. Valid in any state; a partial tally of an abandoned
// session is never merged anywhere unless the caller does so explicitly.
func (s *Session) Tally() Tally {
	t := Tally{PerID: make(map[string]Record)}
	for _, a := range s.answers {
		rec := t.PerID[a.Question.Correct]
		rec.Total++
		t.Answered++
		if a.Correct {
			rec.Correct++
			t.Correct++
		}
		t.PerID[a.Question.Correct] = rec
	}
	return t
}
