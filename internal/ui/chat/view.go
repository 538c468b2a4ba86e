package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stratoguide/internal/domain/model"
)

func (m Model) View() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.statusLine(),
		inputStyle.Width(m.viewport.Width).Render(m.input.View()),
		m.help.View(m.keys),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), body)
}

func (m Model) sidebar() string {
	var b strings.Builder
	b.WriteString(brandStyle.Render("StratoGuide"))
	b.WriteString("\n")

	activeID := m.deps.Store.ActiveID()
	for _, s := range m.deps.Store.List() {
		title := truncate(s.Title, sidebarWidth-4)
		if s.ID == activeID {
			b.WriteString(activeSessionStyle.Render("› " + title))
		} else {
			b.WriteString(sessionStyle.Render("  " + title))
		}
		b.WriteString("\n")
	}

	switch {
	case m.user != nil:
		b.WriteString(userLineStyle.Render(truncate(m.user.Email, sidebarWidth-2)))
	case m.authErr != nil:
		b.WriteString(userLineStyle.Render(errorStyle.Render(m.deps.Text.T("chat.signin_failed"))))
	default:
		b.WriteString(userLineStyle.Render(m.deps.Text.T("chat.guest")))
	}

	h := m.height
	if h < 1 {
		h = lipgloss.Height(b.String())
	}
	return sidebarStyle.Height(h).Render(b.String())
}

func (m Model) statusLine() string {
	if m.deps.Exchange.Pending() {
		return m.spinner.View() + statusStyle.Render(" "+m.deps.Text.T("chat.thinking"))
	}
	return ""
}

func (m Model) renderTranscript(s model.ChatSession) string {
	var b strings.Builder
	for i, msg := range s.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.Role {
		case model.RoleUser:
			b.WriteString(youLabel.Render(m.deps.Text.T("chat.you")))
			b.WriteString("\n")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		default:
			b.WriteString(advisorLabel.Render(m.deps.Text.T("chat.advisor")))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderMarkdown falls back to the raw text when no renderer is set or it fails.
func (m Model) renderMarkdown(content string) string {
	if m.md == nil {
		return content
	}
	out, err := m.md.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}
