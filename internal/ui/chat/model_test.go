package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"stratoguide/internal/config"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/infra/i18n"
	"stratoguide/internal/infra/logging"
	"stratoguide/internal/infra/memory"
	"stratoguide/internal/usecase"
)

type stubAnswers struct {
	answer string
	err    error
}

func (s stubAnswers) Ask(ctx context.Context, query string) (string, error) {
	return s.answer, s.err
}

type stubIdentity struct {
	user *model.User
	err  error
}

func (s *stubIdentity) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}
func (s *stubIdentity) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	return s.SignIn(ctx, email, password)
}
func (s *stubIdentity) SignOut(ctx context.Context) error { return nil }
func (s *stubIdentity) Current() *model.User              { return s.user }
func (s *stubIdentity) Subscribe(fn func(*model.User)) func() {
	return func() {}
}

func newModel(ans stubAnswers) (Model, *memory.SessionStore) {
	cfg := config.ChatConfig{
		SeedTitle:     config.DefaultSeedTitle,
		Greeting:      config.DefaultGreeting,
		ErrorText:     config.DefaultErrorText,
		TitleMaxLen:   20,
		TitleEllipsis: "...",
	}
	st := memory.NewSessionStore(cfg.SeedTitle, cfg.Greeting)
	uc := usecase.NewExchangeUseCase(st, ans, cfg, logging.Nop(), true)
	return New(Deps{Store: st, Exchange: uc, Logger: logging.Nop()}), st
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

// collect runs cmd and flattens batches into the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findDone(t *testing.T, msgs []tea.Msg) ExchangeDoneMsg {
	t.Helper()
	for _, msg := range msgs {
		if d, ok := msg.(ExchangeDoneMsg); ok {
			return d
		}
	}
	t.Fatalf("no ExchangeDoneMsg in %v", msgs)
	return ExchangeDoneMsg{}
}

func TestModel_EnterSendsAndRenders(t *testing.T) {
	m, st := newModel(stubAnswers{answer: "Find a painful problem."})
	m.input.SetValue("What is PMF?")

	m, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("want a resolve command")
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}
	if !m.deps.Exchange.Pending() {
		t.Fatal("want pending until the command runs")
	}
	if !strings.Contains(m.View(), "thinking") {
		t.Fatal("want the loading indicator while pending")
	}
	if n := len(st.Active().Messages); n != 2 {
		t.Fatalf("user message not appended: %d", n)
	}

	done := findDone(t, collect(cmd))
	next, _ := m.Update(done)
	m = next.(Model)

	if done.SessionID != st.ActiveID() || done.Reply.Content != "Find a painful problem." {
		t.Fatalf("done = %+v", done)
	}
	view := m.View()
	for _, want := range []string{"What is PMF?...", "Find a painful problem.", "You"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	if strings.Contains(view, "thinking") {
		t.Fatal("loading indicator still shown")
	}
}

func TestModel_FailureShowsErrorText(t *testing.T) {
	m, st := newModel(stubAnswers{err: errors.New("dial tcp: refused")})
	m.input.SetValue("test")

	m, cmd := press(m, tea.KeyEnter)
	next, _ := m.Update(findDone(t, collect(cmd)))
	m = next.(Model)

	last, _ := st.Active().LastMessage()
	if last.Content != config.DefaultErrorText {
		t.Fatalf("last = %q", last.Content)
	}
	if !strings.Contains(m.View(), "couldn't reach") {
		t.Fatal("error text not rendered")
	}
}

func TestModel_SilentRejections(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		m, st := newModel(stubAnswers{answer: "x"})
		m.input.SetValue("   ")
		m, cmd := press(m, tea.KeyEnter)
		if cmd != nil {
			t.Fatal("no command expected")
		}
		if len(st.Active().Messages) != 1 {
			t.Fatal("transcript changed")
		}
		if m.input.Value() != "   " {
			t.Fatalf("input changed: %q", m.input.Value())
		}
	})

	t.Run("while pending", func(t *testing.T) {
		m, st := newModel(stubAnswers{answer: "x"})
		m.input.SetValue("first")
		m, first := press(m, tea.KeyEnter)

		m.input.SetValue("second")
		m, cmd := press(m, tea.KeyEnter)
		if cmd != nil {
			t.Fatal("second send must be ignored")
		}
		if m.input.Value() != "second" {
			t.Fatal("rejected input must stay in the box")
		}
		if len(st.Active().Messages) != 2 {
			t.Fatalf("transcript = %d messages", len(st.Active().Messages))
		}
		findDone(t, collect(first))
	})
}

func TestModel_SessionKeys(t *testing.T) {
	m, st := newModel(stubAnswers{})
	seed := st.ActiveID()

	m, _ = press(m, tea.KeyCtrlN)
	m, _ = press(m, tea.KeyCtrlN)
	if st.Len() != 3 {
		t.Fatalf("len = %d", st.Len())
	}
	if st.Active().Title != "Chat 3" {
		t.Fatalf("active = %q", st.Active().Title)
	}
	if !strings.Contains(m.View(), "Chat 2") {
		t.Fatal("sidebar missing Chat 2")
	}

	m, _ = press(m, tea.KeyTab)
	if st.ActiveID() != seed {
		t.Fatal("tab should wrap to the first session")
	}
	m, _ = press(m, tea.KeyShiftTab)
	if st.Active().Title != "Chat 3" {
		t.Fatalf("shift+tab landed on %q", st.Active().Title)
	}

	m, _ = press(m, tea.KeyCtrlD)
	if st.Len() != 2 || st.ActiveID() != seed {
		t.Fatalf("delete active: len=%d active=%s", st.Len(), st.ActiveID())
	}
	m, _ = press(m, tea.KeyCtrlD)
	m, _ = press(m, tea.KeyCtrlD)
	if st.Len() != 1 {
		t.Fatalf("last session must survive: len=%d", st.Len())
	}
	if !strings.Contains(m.View(), config.DefaultGreeting[:20]) {
		t.Fatal("greeting not rendered")
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m, _ := newModel(stubAnswers{})
		_, cmd := press(m, k)
		if cmd == nil {
			t.Fatalf("%v: want quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%v: want tea.QuitMsg", k)
		}
	}
}

func TestModel_SignInAtStart(t *testing.T) {
	m, _ := newModel(stubAnswers{})
	idp := &stubIdentity{user: &model.User{ID: "u1", Email: "ada@example.com"}}
	m.deps.Identity, m.deps.Email, m.deps.Password = idp, "ada@example.com", "pw"

	var changed *UserChangedMsg
	for _, msg := range collect(m.Init()) {
		if u, ok := msg.(UserChangedMsg); ok {
			changed = &u
		}
	}
	if changed == nil {
		t.Fatal("Init did not sign in")
	}
	next, _ := m.Update(*changed)
	if !strings.Contains(next.(Model).View(), "ada@example.com") {
		t.Fatal("user not shown in the sidebar")
	}

	idp.err = errors.New("INVALID_PASSWORD")
	next, _ = m.Update(collect(signInCmd(context.Background(), idp, "ada@example.com", "bad"))[0])
	if !strings.Contains(next.(Model).View(), "sign-in failed") {
		t.Fatal("sign-in failure not shown")
	}
}

func TestModel_ResizeLaysOut(t *testing.T) {
	m, _ := newModel(stubAnswers{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if m.viewport.Width != 120-sidebarWidth-3 || m.viewport.Height != 35 {
		t.Fatalf("viewport = %dx%d", m.viewport.Width, m.viewport.Height)
	}
}

func TestTruncate(t *testing.T) {
	cases := map[string]struct {
		in    string
		limit int
		want  string
	}{
		"fits":  {"abc", 5, "abc"},
		"cut":   {"abcdef", 4, "abc…"},
		"runes": {"ñandú grande", 3, "ña…"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := truncate(tc.in, tc.limit); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestModel_Localized(t *testing.T) {
	es, err := i18n.NewTranslator(i18n.LocalesFS, "es")
	if err != nil {
		t.Fatal(err)
	}
	st := memory.NewSessionStore(config.DefaultSeedTitle, config.DefaultGreeting)
	cfg := config.ChatConfig{ErrorText: config.DefaultErrorText, TitleMaxLen: 20, TitleEllipsis: "..."}
	uc := usecase.NewExchangeUseCase(st, stubAnswers{answer: "ok"}, cfg, logging.Nop(), true)
	m := New(Deps{Store: st, Exchange: uc, Logger: logging.Nop(), Text: es})

	if m.input.Placeholder != es.T("chat.placeholder") {
		t.Fatalf("placeholder = %q", m.input.Placeholder)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if view := next.(Model).View(); !strings.Contains(view, "invitado") {
		t.Fatal("guest footer not localized")
	}
}
