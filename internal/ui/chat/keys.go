package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"stratoguide/internal/infra/i18n"
)

// KeyMap holds the chat bindings.
type KeyMap struct {
	Send       key.Binding
	NewSession key.Binding
	Delete     key.Binding
	Next       key.Binding
	Prev       key.Binding
	Quit       key.Binding
}

func DefaultKeyMap(tr *i18n.Translator) KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", tr.T("help.send")),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", tr.T("help.new")),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", tr.T("help.delete")),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", tr.T("help.next")),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", tr.T("help.prev")),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", tr.T("help.quit")),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.NewSession, k.Delete, k.Next, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.NewSession, k.Delete}, {k.Next, k.Prev, k.Quit}}
}
