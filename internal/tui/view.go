package tui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/yonatanwolf/cischat/internal/metrics"
	"github.com/yonatanwolf/cischat/internal/models"
)

const listPaneWidth = 30

// Theme holds the color scheme for the chat UI.
type Theme struct {
	Accent  lipgloss.Color
	User    lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Divider lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Accent:  lipgloss.Color("#5FAFD7"), // light blue
	User:    lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Divider: lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) activeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint)
}

func (t Theme) dividerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Divider)
}

// View renders the whole UI.
func (m model) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m model) renderContent() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading...\n"
	}

	msgWidth := m.width - listPaneWidth - 3
	if msgWidth < 20 {
		msgWidth = 20
	}
	bodyHeight := m.height - 3
	if bodyHeight < 4 {
		bodyHeight = 4
	}

	list := m.renderChatList(bodyHeight)
	messages := m.renderMessages(msgWidth, bodyHeight)
	divider := m.theme.dividerStyle().Render(strings.Repeat("│\n", bodyHeight))

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, divider, messages)

	return body + "\n" + m.input.View() + "\n" + m.statusLine()
}

// renderChatList renders the left pane. The entry whose id equals the
// selected chat id gets the active style; exactly one entry can match.
func (m model) renderChatList(height int) string {
	lines := make([]string, 0, height)
	for i, ch := range m.chats {
		if len(lines) >= height {
			break
		}
		title := ch.Title
		if title == "" {
			title = fmt.Sprintf("chat %d", ch.ID)
		}
		title = truncate(title, listPaneWidth-4)

		cursor := "  "
		if m.focus == focusList && i == m.listIndex {
			cursor = "> "
		}

		line := cursor + title
		if ch.ID == m.selected {
			line = m.theme.activeStyle().Render(cursor + "▌ " + title)
		}
		lines = append(lines, line)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().Width(listPaneWidth).Render(strings.Join(lines, "\n"))
}

// renderMessages renders the message pane, pinned to the bottom like the
// web client's scroll-to-bottom behavior.
func (m model) renderMessages(width, height int) string {
	var blocks []string
	for _, msg := range m.msgs {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	if m.pending != "" {
		blocks = append(blocks, m.renderMessage(models.Message{
			Role:    models.RoleUser,
			Content: m.pending,
		}, width))
		blocks = append(blocks, m.spin.View()+m.theme.hintStyle().Render(" thinking..."))
	}

	lines := strings.Split(strings.Join(blocks, "\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append([]string{""}, lines...)
	}
	return strings.Join(lines, "\n")
}

func (m model) renderMessage(msg models.Message, width int) string {
	content := lipgloss.NewStyle().Width(width).Render(msg.Content)

	if !msg.IsAssistant() {
		label := m.theme.userStyle().Bold(true).Render("you")
		return label + "\n" + m.theme.userStyle().Render(content)
	}

	var b strings.Builder
	b.WriteString(m.theme.activeStyle().Render("assistant"))
	b.WriteString("\n")
	b.WriteString(content)
	for _, s := range msg.Sources {
		ref := fmt.Sprintf("[%d] %s", s.Index, s.URL)
		if s.Title != "" {
			ref += " " + s.Title
		}
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render(truncate(ref, width)))
	}
	return b.String()
}

func (m model) statusLine() string {
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ %v", m.err))
	}
	if m.loading {
		return m.spin.View() + m.theme.hintStyle().Render(" loading chats...")
	}

	var parts []string
	if ch := chatByID(m.chats, m.selected); ch != nil {
		parts = append(parts, truncate(ch.Title, 32))
	}
	stats := m.client.Stats()
	parts = append(parts, fmt.Sprintf("%d requests", stats.Requests()))
	if last := stats.Last(metrics.OpSend); last > 0 {
		parts = append(parts, fmt.Sprintf("last answer %s", last.Round(100*time.Millisecond)))
	}
	parts = append(parts, "tab: chats · ctrl+n: new chat · esc: quit")

	return m.theme.hintStyle().Render(strings.Join(parts, " · "))
}

func chatByID(chats []models.Chat, id int) *models.Chat {
	for i := range chats {
		if chats[i].ID == id {
			return &chats[i]
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
