// Package app is the bubbletea presentation layer driving the quiz loop. All
// quiz semantics live in internal/quiz; this model only calls
// CurrentQuestion/Submit in response to key presses.
package app

import (
	"fmt"
	"math/rand"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"photoid/internal/catalog"
	"photoid/internal/config"
	"photoid/internal/quiz"
	"photoid/internal/score"
	"photoid/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// View identifies the screen currently shown.
type View int

const (
	ViewScanning View = iota
	ViewQuiz
	ViewFeedback
	ViewResults
	ViewError
)

// Model is the root bubbletea model for the photoid TUI.
type Model struct {
	cfg    config.Config
	target string // non-empty drills one individual
	keys   KeyMap

	// Core state
	catalog *catalog.Catalog
	session *quiz.Session
	store   *score.Store
	ledger  *score.Ledger

	// Current question/answer
	question   quiz.Question
	lastAnswer quiz.Answer

	// UI state
	view      View
	spinner   spinner.Model
	width     int
	height    int
	fatalErr  string
	statusMsg string
	saved     bool
	saveErr   string
}

// New creates a model for the given configuration. target, when non-empty,
// runs the whole session in targeted mode.
func New(cfg config.Config, target string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.TitleStyle

	return Model{
		cfg:     cfg,
		target:  target,
		keys:    DefaultKeyMap(),
		spinner: sp,
		view:    ViewScanning,
	}
}

// Init starts the catalog scan and opens the score store.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		buildCatalogCmd(m.cfg),
		openStoreCmd(m.cfg.Database),
	)
}

// buildCatalogCmd scans the photo folders.
func buildCatalogCmd(cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		filter := catalog.Filter{Include: cfg.Include, Exclude: cfg.Exclude}
		cat, err := catalog.Build(cfg.Folders, filter)
		if err != nil {
			return CatalogErrorMsg{Err: err}
		}
		return CatalogBuiltMsg{Catalog: cat}
	}
}

// openStoreCmd opens the score database and loads the prior ledger.
func openStoreCmd(path string) tea.Cmd {
	return func() tea.Msg {
		store, err := score.Open(path)
		if err != nil {
			return StoreErrorMsg{Err: err}
		}
		ledger, err := store.LoadLedger()
		if err != nil {
			store.Close()
			return StoreErrorMsg{Err: err}
		}
		return StoreOpenedMsg{Store: store, Ledger: ledger}
	}
}

// saveSessionCmd records the finished session in the score database.
func saveSessionCmd(store *score.Store, sessionID string, tally quiz.Tally) tea.Cmd {
	return func() tea.Msg {
		return SessionSavedMsg{Err: store.RecordSession(sessionID, tally, time.Now())}
	}
}

// openPhotoCmd hands the photo to the platform image viewer.
func openPhotoCmd(path string) tea.Cmd {
	return func() tea.Msg {
		var c *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			c = exec.Command("open", path)
		case "windows":
			c = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
		default:
			c = exec.Command("xdg-open", path)
		}
		if err := c.Start(); err != nil {
			return PhotoOpenedMsg{Err: err}
		}
		go c.Wait()
		return PhotoOpenedMsg{}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.view != ViewScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CatalogBuiltMsg:
		m.catalog = msg.Catalog
		return m.startSession()

	case CatalogErrorMsg:
		m.fatalErr = msg.Err.Error()
		m.view = ViewError
		return m, nil

	case StoreOpenedMsg:
		m.store = msg.Store
		m.ledger = msg.Ledger
		return m, nil

	case StoreErrorMsg:
		m.fatalErr = msg.Err.Error()
		m.view = ViewError
		return m, nil

	case SessionSavedMsg:
		if msg.Err != nil {
			m.saveErr = msg.Err.Error()
		} else {
			m.saved = true
		}
		return m, nil

	case PhotoOpenedMsg:
		if msg.Err != nil {
			m.statusMsg = "could not open photo: " + msg.Err.Error()
		}
		return m, nil
	}

	return m, nil
}

// startSession builds the generator and session and draws question 1.
func (m Model) startSession() (tea.Model, tea.Cmd) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gen := quiz.NewGenerator(m.catalog, m.cfg.Choices, rng)

	mode := quiz.Random()
	if m.target != "" {
		mode = quiz.Targeted(m.target)
	}
	m.session = quiz.NewSession(gen, m.cfg.Questions, mode)

	if err := m.session.Start(); err != nil {
		m.fatalErr = err.Error()
		m.view = ViewError
		return m, nil
	}

	q, err := m.session.CurrentQuestion()
	if err != nil {
		m.fatalErr = err.Error()
		m.view = ViewError
		return m, nil
	}
	m.question = q
	m.view = ViewQuiz
	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		// Abandoning a running session never merges its partial tally.
		if m.store != nil {
			m.store.Close()
		}
		return m, tea.Quit
	}

	switch m.view {
	case ViewQuiz:
		if key.Matches(msg, m.keys.Open) {
			return m, openPhotoCmd(m.question.Photo.Path)
		}
		if idx, ok := digitIndex(msg.String()); ok && idx < len(m.question.Candidates) {
			return m.submit(m.question.Candidates[idx])
		}

	case ViewFeedback:
		if key.Matches(msg, m.keys.Continue) {
			if m.session.State() == quiz.Finished {
				m.view = ViewResults
				return m, nil
			}
			q, err := m.session.CurrentQuestion()
			if err != nil {
				m.fatalErr = err.Error()
				m.view = ViewError
				return m, nil
			}
			m.question = q
			m.statusMsg = ""
			m.view = ViewQuiz
			return m, nil
		}

	case ViewResults:
		if key.Matches(msg, m.keys.Save) && m.store != nil && !m.saved {
			return m, saveSessionCmd(m.store, m.session.ID(), m.session.Tally())
		}
	}

	return m, nil
}

// submit records the chosen candidate for the current question.
func (m Model) submit(chosen string) (tea.Model, tea.Cmd) {
	ans, err := m.session.Submit(chosen)
	if err != nil {
		m.fatalErr = err.Error()
		m.view = ViewError
		return m, nil
	}
	m.lastAnswer = ans
	m.view = ViewFeedback
	return m, nil
}

// digitIndex maps "1".."9" to a candidate index.
func digitIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

// View renders the current screen.
func (m Model) View() string {
	switch m.view {
	case ViewScanning:
		return m.renderScanning()
	case ViewQuiz:
		return m.renderQuiz()
	case ViewFeedback:
		return m.renderFeedback()
	case ViewResults:
		return m.renderResults()
	case ViewError:
		return m.renderError()
	}
	return ""
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("PHOTOID")
	if m.session == nil || m.session.State() == quiz.Configured {
		return title
	}
	answered, total := m.session.Progress()
	n := answered
	if m.session.State() == quiz.Running {
		n++ // the question on screen
	}
	return title + ui.StatusStyle.Render(fmt.Sprintf(" — question %d of %d", n, total))
}

func (m Model) renderScanning() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n\n")
	b.WriteString(m.spinner.View() + " Scanning photo folders...\n")
	b.WriteString(ui.DimStyle.Render(strings.Join(m.cfg.Folders, "\n")))
	return b.String()
}

func (m Model) renderQuiz() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n\n")
	b.WriteString(ui.QuestionStyle.Render("Who is this?") + "\n\n")
	b.WriteString("  " + ui.PhotoPathStyle.Render(m.question.Photo.Path) + "\n\n")

	for i, c := range m.question.Candidates {
		num := ui.CandidateKeyStyle.Render(fmt.Sprintf("%d", i+1))
		b.WriteString(fmt.Sprintf("  %s  %s\n", num, c))
	}

	if m.statusMsg != "" {
		b.WriteString("\n" + ui.DimStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n" + m.renderFooter(
		footerEntry{"1-" + fmt.Sprint(len(m.question.Candidates)), "answer"},
		footerEntry{"o", "open photo"},
		footerEntry{"q", "quit"},
	))
	return b.String()
}

func (m Model) renderFeedback() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n\n")

	if m.lastAnswer.Correct {
		b.WriteString(ui.CorrectStyle.Render("Well done!") + "\n")
	} else {
		b.WriteString(ui.WrongStyle.Render("Wrong!") + "\n")
		b.WriteString(fmt.Sprintf("It was %s, not %s\n",
			ui.CorrectStyle.Render(m.lastAnswer.Question.Correct),
			ui.WrongStyle.Render(m.lastAnswer.Chosen)))
	}

	b.WriteString("\n" + m.renderFooter(
		footerEntry{"enter", "continue"},
		footerEntry{"q", "quit"},
	))
	return b.String()
}

func (m Model) renderResults() string {
	tally := m.session.Tally()

	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n\n")
	b.WriteString(ui.QuestionStyle.Render("Test finished!") + "\n")
	b.WriteString(fmt.Sprintf("Overall success rate: %.0f%% (%d/%d)\n\n",
		tally.Accuracy()*100, tally.Correct, tally.Answered))

	// Lifetime accuracy = prior ledger + this session, computed on a copy so
	// the loaded ledger stays untouched until the user saves.
	lifetime := score.NewLedger()
	if m.ledger != nil {
		for id, rec := range m.ledger.Snapshot() {
			lifetime.Set(id, rec)
		}
	}
	lifetime.Merge(tally)

	ids := make([]string, 0, len(tally.PerID))
	nameW := 0
	for id := range tally.PerID {
		ids = append(ids, id)
		if len(id) > nameW {
			nameW = len(id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		rec := tally.PerID[id]
		frac := float64(rec.Correct) / float64(rec.Total)
		line := fmt.Sprintf("  %s %s %3.0f%% (%d/%d)",
			padRight(id, nameW), ui.AccuracyBar(frac, 10), frac*100, rec.Correct, rec.Total)
		if acc, err := lifetime.Accuracy(id); err == nil {
			line += ui.DimStyle.Render(fmt.Sprintf("  lifetime %.0f%%", acc*100))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.saved:
		b.WriteString(ui.CorrectStyle.Render("Results saved.") + "\n")
	case m.saveErr != "":
		b.WriteString(ui.ErrorTextStyle.Render("Save failed: "+m.saveErr) + "\n")
	case m.store == nil:
		b.WriteString(ui.DimStyle.Render("Score database unavailable; results not saved.") + "\n")
	}

	entries := []footerEntry{{"q", "quit"}}
	if m.store != nil && !m.saved {
		entries = append([]footerEntry{{"s", "save results"}}, entries...)
	}
	b.WriteString("\n" + m.renderFooter(entries...))
	return b.String()
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n\n")
	b.WriteString(ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.fatalErr) + "\n")
	b.WriteString("\n" + m.renderFooter(footerEntry{"q", "quit"}))
	return b.String()
}

type footerEntry struct {
	key  string
	desc string
}

func (m Model) renderFooter(entries ...footerEntry) string {
	var parts []string
	for _, e := range entries {
		parts = append(parts, ui.FooterKeyStyle.Render(e.key)+ui.FooterDescStyle.Render(" "+e.desc))
	}
	return strings.Join(parts, "  ")
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
