// Package chat is the terminal front-end of the advisor: a session sidebar,
// the active transcript and an input line. All state lives in the session
// store; the model only keeps the input buffer and the window size.
package chat

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/domain/ports/adapter"
	"stratoguide/internal/domain/ports/repository"
	"stratoguide/internal/infra/i18n"
	"stratoguide/internal/usecase"
)

// ExchangeDoneMsg reports that a reply (or the error text) was written to SessionID.
type ExchangeDoneMsg struct {
	SessionID string
	Reply     model.ChatMessage
}

// UserChangedMsg carries identity updates into the program.
type UserChangedMsg struct {
	User *model.User
	Err  error
}

// Deps wires the model to the chat core.
type Deps struct {
	Ctx      context.Context
	Store    repository.SessionStore
	Exchange usecase.ExchangeUseCase
	Logger   *zerolog.Logger

	// Optional sign-in performed by Init.
	Identity adapter.IdentityProvider
	Email    string
	Password string

	// Text localizes the interface; nil means the embedded English strings.
	Text *i18n.Translator

	// Markdown renders assistant messages with glamour.
	Markdown bool
}

type Model struct {
	deps Deps
	keys KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	md       *glamour.TermRenderer

	width  int
	height int

	user    *model.User
	authErr error
}

func New(deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Text == nil {
		deps.Text = i18n.Default()
	}

	in := textinput.New()
	in.Placeholder = deps.Text.T("chat.placeholder")
	in.Prompt = "› "
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = advisorLabel

	m := Model{
		deps:     deps,
		keys:     DefaultKeyMap(deps.Text),
		viewport: viewport.New(80, 20),
		input:    in,
		spinner:  sp,
		help:     help.New(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.deps.Identity != nil && m.deps.Email != "" {
		cmds = append(cmds, signInCmd(m.deps.Ctx, m.deps.Identity, m.deps.Email, m.deps.Password))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ExchangeDoneMsg:
		m.refresh()
		return m, nil

	case UserChangedMsg:
		m.user = msg.User
		switch {
		case msg.Err != nil:
			m.authErr = msg.Err
			if m.deps.Logger != nil {
				m.deps.Logger.Warn().Err(msg.Err).Msg("sign-in failed")
			}
		case msg.User != nil:
			m.authErr = nil
		}
		return m, nil

	case spinner.TickMsg:
		if !m.deps.Exchange.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.send()

	case key.Matches(msg, m.keys.NewSession):
		m.deps.Store.Create()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.deps.Store.Delete(m.deps.Store.ActiveID())
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		m.viewport, cmd = m.viewport.Update(msg)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// send appends the user message now and resolves the reply in a command.
// Empty input and sends while pending are dropped without feedback.
func (m Model) send() (tea.Model, tea.Cmd) {
	ex, err := m.deps.Exchange.Begin(m.deps.Ctx, m.input.Value())
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyMessage) && !errors.Is(err, domain.ErrExchangePending) && m.deps.Logger != nil {
			m.deps.Logger.Error().Err(err).Msg("begin exchange")
		}
		return m, nil
	}
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, resolveCmd(m.deps.Ctx, m.deps.Exchange, ex))
}

func resolveCmd(ctx context.Context, uc usecase.ExchangeUseCase, ex *usecase.Exchange) tea.Cmd {
	return func() tea.Msg {
		return ExchangeDoneMsg{SessionID: ex.SessionID, Reply: uc.Resolve(ctx, ex)}
	}
}

func signInCmd(ctx context.Context, idp adapter.IdentityProvider, email, password string) tea.Cmd {
	return func() tea.Msg {
		u, err := idp.SignIn(ctx, email, password)
		return UserChangedMsg{User: u, Err: err}
	}
}

func (m *Model) cycle(step int) {
	list := m.deps.Store.List()
	if len(list) < 2 {
		return
	}
	active := m.deps.Store.ActiveID()
	idx := 0
	for i, s := range list {
		if s.ID == active {
			idx = i
			break
		}
	}
	next := (idx + step + len(list)) % len(list)
	m.deps.Store.SetActive(list[next].ID)
	m.refresh()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	mainW := w - sidebarWidth - 3
	if mainW < 20 {
		mainW = 20
	}
	// input box (3) + status (1) + help (1)
	vpH := h - 5
	if vpH < 3 {
		vpH = 3
	}
	m.viewport.Width = mainW
	m.viewport.Height = vpH
	m.input.Width = mainW - 6
	m.help.Width = mainW

	if m.deps.Markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(mainW-2),
		)
		if err == nil {
			m.md = r
		}
	}
	m.refresh()
}

// refresh re-renders the active transcript from the store.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript(m.deps.Store.Active()))
	m.viewport.GotoBottom()
}
