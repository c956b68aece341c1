// Package tui implements the interactive chat UI: a chat list pane, the
// message history of the selected chat, and an input line.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/yonatanwolf/cischat/internal/api"
	"github.com/yonatanwolf/cischat/internal/chat"
	"github.com/yonatanwolf/cischat/internal/models"
)

// refreshMsg reports completion of a controller operation. The model
// copies the view state into itself when it arrives.
type refreshMsg struct {
	err error
}

// viewState is the TUI's chat.View implementation. Controller
// notifications arrive on the goroutine running the command, so access
// is mutex-guarded; the model copies a snapshot on each refreshMsg.
type viewState struct {
	mu       sync.Mutex
	chats    []models.Chat
	msgs     []models.Message
	selected int
}

func (s *viewState) ChatsUpdated(chats []models.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = chats
}

func (s *viewState) SelectionChanged(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

func (s *viewState) MessagesUpdated(msgs []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = msgs
}

func (s *viewState) MessageAppended(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *viewState) snapshot() ([]models.Chat, []models.Message, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chats, s.msgs, s.selected
}

// focus identifies which pane receives key input.
type focus int

const (
	focusInput focus = iota
	focusList
)

// model is the bubbletea model for the chat UI.
//
// Controller operations run as commands; the busy/loading flags ensure
// only one operation is in flight, so the controller is never touched
// from two goroutines at once. An in-flight send cannot be cancelled.
type model struct {
	ctrl   *chat.Controller
	client *api.Client
	view   *viewState

	// Snapshots of the view state, copied after each operation.
	chats    []models.Chat
	msgs     []models.Message
	selected int

	input textinput.Model
	spin  spinner.Model
	theme Theme

	width  int
	height int
	focus  focus

	listIndex int    // cursor position in the chat list pane
	pending   string // optimistically shown user message while sending
	busy      bool   // send or chat switch in flight
	loading   bool   // initial load in flight
	err       error
	quitting  bool
}

func newModel(client *api.Client) model {
	ti := textinput.New()
	ti.Placeholder = "Ask something..."
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	view := &viewState{}

	return model{
		ctrl:    chat.NewController(client, view),
		client:  client,
		view:    view,
		input:   ti,
		spin:    sp,
		theme:   defaultTheme,
		loading: true,
	}
}

// Init starts the initial chat list load.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadChatsCmd(0), m.spin.Tick)
}

// Update handles messages and returns the updated model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case refreshMsg:
		m.busy = false
		m.loading = false
		m.pending = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		if m.focus == focusInput {
			m.focus = focusList
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case "ctrl+n":
		if m.busy || m.loading {
			return m, nil
		}
		m.busy = true
		return m, m.newChatCmd()
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}

	if msg.String() == "enter" {
		return m.dispatchSend()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	return m.applyListKey(msg.String())
}

func (m model) applyListKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k", "ctrl+p":
		if m.listIndex > 0 {
			m.listIndex--
		}
	case "down", "j", "ctrl+j":
		if m.listIndex < len(m.chats)-1 {
			m.listIndex++
		}
	case "enter":
		if m.busy || m.loading || m.listIndex >= len(m.chats) {
			return m, nil
		}
		m.busy = true
		return m, m.selectCmd(m.chats[m.listIndex].ID)
	}
	return m, nil
}

// dispatchSend starts a send for the input line's content. Blank input
// or a missing selection does nothing, and the input is cleared before
// the request so the typed text shows up only as a message bubble.
func (m model) dispatchSend() (tea.Model, tea.Cmd) {
	if m.busy || m.loading {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.selected == 0 {
		return m, nil
	}

	m.input.SetValue("")
	m.pending = text
	m.busy = true
	return m, tea.Batch(m.sendCmd(text), m.spin.Tick)
}

// refresh copies the accumulated view state into the model. Only called
// while no operation is in flight.
func (m *model) refresh() {
	m.chats, m.msgs, m.selected = m.view.snapshot()
	for i, ch := range m.chats {
		if ch.ID == m.selected {
			m.listIndex = i
			break
		}
	}
}

// ============================================================================
// COMMANDS
// ============================================================================

func (m model) loadChatsCmd(selectID int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return refreshMsg{err: ctrl.LoadChats(context.Background(), selectID)}
	}
}

func (m model) selectCmd(id int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return refreshMsg{err: ctrl.Select(context.Background(), id)}
	}
}

func (m model) newChatCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return refreshMsg{err: ctrl.NewChat(context.Background())}
	}
}

func (m model) sendCmd(text string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Send(context.Background(), text)
		return refreshMsg{err: err}
	}
}

// Run starts the interactive chat UI and blocks until the user quits.
func Run(client *api.Client) error {
	p := tea.NewProgram(newModel(client))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
