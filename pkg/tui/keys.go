package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Edit       key.Binding
	Space      key.Binding
	Tab        key.Binding
	Section    key.Binding
	Prev       key.Binding
	Next       key.Binding
	Add        key.Binding
	Delete     key.Binding
	Save       key.Binding
	Reload     key.Binding
	Preview    key.Binding
	Search     key.Binding
	Help       key.Binding
	Quit       key.Binding
	Bold       key.Binding
	Link       key.Binding
	SelectAll  key.Binding
	ExitEditor key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "edit"),
		),
		Space: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "advance / toggle"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Section: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this / next week"),
		),
		Prev: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "older week / previous month"),
		),
		Next: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "newer week / next month"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s", "s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle preview"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Bold: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "bold"),
		),
		Link: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "insert link"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		ExitEditor: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop editing"),
		),
	}
}

// ShortHelp returns the footer help text.
func (k KeyMap) ShortHelp() string {
	return "↑↓ nav  tab view  [ ] week/month  t section  e edit  space advance  a add  d delete  ctrl+s save  / search  ? help"
}

// EditHelp returns the footer help text while a report is being edited.
func (k KeyMap) EditHelp() string {
	return "esc done  ctrl+b bold  ctrl+k link  enter newline  shift+arrows select  ctrl+a all  ctrl+s save"
}

// FullHelp returns all key bindings for the help modal.
func (k KeyMap) FullHelp() [][]string {
	return [][]string{
		{"↑/k ↓/j", "Move between rows"},
		{"tab", "Switch operational / strategic view"},
		{"[ ]", "Older / newer week, previous / next month"},
		{"t", "Toggle this week / next week report"},
		{"e / enter", "Edit report, month or priority title"},
		{"space", "Advance candidate status / toggle goal"},
		{"a", "Add candidate or goal"},
		{"d", "Delete candidate or goal"},
		{"p", "Toggle markdown preview"},
		{"ctrl+s / s", "Save now"},
		{"R", "Reload from storage"},
		{"/", "Search"},
		{"", ""},
		{"ctrl+b", "Bold (editing)"},
		{"ctrl+k", "Insert link (editing)"},
		{"enter", "New line, links the URL before the caret"},
		{"shift+arrows", "Extend selection"},
		{"ctrl+a", "Select all"},
		{"esc", "Stop editing"},
		{"", ""},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
}
