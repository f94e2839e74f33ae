package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the non-digit bindings. Candidate selection uses the digit
// keys 1..9 directly.
type KeyMap struct {
	Open     key.Binding
	Continue key.Binding
	Save     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("o", "O"),
			key.WithHelp("o", "open photo"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "continue"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "S"),
			key.WithHelp("s", "save results"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
