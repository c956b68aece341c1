package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonatanwolf/cischat/internal/api"
	"github.com/yonatanwolf/cischat/internal/models"
)

// fakeServer mimics the chat server's endpoints with in-memory state.
type fakeServer struct {
	mu       sync.Mutex
	chats    []models.Chat
	messages map[int][]models.Message
	nextID   int

	sendCalls   int
	createCalls int
	answer      string
	sources     []models.Source
	failSend    string // when set, send_async fails with this detail
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		messages: make(map[int][]models.Message),
		nextID:   1,
		answer:   "an answer",
	}
}

func (f *fakeServer) addChat(title string) models.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := models.Chat{ID: f.nextID, Title: title}
	f.nextID++
	// Server returns chats newest-first.
	f.chats = append([]models.Chat{ch}, f.chats...)
	return ch
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chats", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		chats := f.chats
		if chats == nil {
			chats = []models.Chat{}
		}
		json.NewEncoder(w).Encode(chats)
	})
	mux.HandleFunc("POST /api/chats", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.createCalls++
		f.mu.Unlock()
		ch := f.addChat("New chat")
		json.NewEncoder(w).Encode(ch)
	})
	mux.HandleFunc("GET /api/chats/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		msgs := f.messages[id]
		if msgs == nil {
			msgs = []models.Message{}
		}
		json.NewEncoder(w).Encode(msgs)
	})
	mux.HandleFunc("POST /api/chats/{id}/send_async", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))

		f.mu.Lock()
		defer f.mu.Unlock()
		f.sendCalls++

		if f.failSend != "" {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, `{"detail":%q}`, f.failSend)
			return
		}

		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		text := payload["text"]

		f.messages[id] = append(f.messages[id],
			models.Message{Role: models.RoleUser, Content: text},
			models.Message{Role: models.RoleAssistant, Content: f.answer, Sources: f.sources},
		)
		// First message retitles the chat, like the real server.
		for i := range f.chats {
			if f.chats[i].ID == id && f.chats[i].Title == "New chat" {
				title := text
				if len(title) > 40 {
					title = title[:40]
				}
				f.chats[i].Title = title
			}
		}
		json.NewEncoder(w).Encode(models.SendResult{Answer: f.answer, Sources: f.sources})
	})
	return mux
}

// recordingView captures controller notifications in order.
type recordingView struct {
	events   []string
	chats    []models.Chat
	msgs     []models.Message
	appended []models.Message
	selected int
}

func (v *recordingView) ChatsUpdated(chats []models.Chat) {
	v.events = append(v.events, "chats")
	v.chats = chats
}

func (v *recordingView) SelectionChanged(id int) {
	v.events = append(v.events, "selection")
	v.selected = id
}

func (v *recordingView) MessagesUpdated(msgs []models.Message) {
	v.events = append(v.events, "messages")
	v.msgs = msgs
}

func (v *recordingView) MessageAppended(msg models.Message) {
	v.events = append(v.events, "append")
	v.appended = append(v.appended, msg)
}

func newTestController(t *testing.T, f *fakeServer, view View) *Controller {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{
		Endpoint: srv.URL,
		Timeout:  5 * time.Second,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return NewController(client, view)
}

func TestLoadChatsCreatesChatWhenEmpty(t *testing.T) {
	f := newFakeServer()
	ctrl := newTestController(t, f, nil)

	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	assert.Equal(t, 1, f.createCalls, "exactly one chat should be created")
	require.Len(t, ctrl.Chats(), 1)
	assert.Equal(t, ctrl.Chats()[0].ID, ctrl.Selected())
	assert.Empty(t, ctrl.Messages())
}

func TestLoadChatsSelectsFirstByDefault(t *testing.T) {
	f := newFakeServer()
	f.addChat("older")
	newest := f.addChat("newest")
	ctrl := newTestController(t, f, nil)

	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	assert.Equal(t, newest.ID, ctrl.Selected())
	assert.Equal(t, 0, f.createCalls)
}

func TestLoadChatsHonorsSelectID(t *testing.T) {
	f := newFakeServer()
	older := f.addChat("older")
	f.addChat("newest")
	ctrl := newTestController(t, f, nil)

	require.NoError(t, ctrl.LoadChats(context.Background(), older.ID))
	assert.Equal(t, older.ID, ctrl.Selected())
}

func TestLoadChatsIgnoresUnknownSelectID(t *testing.T) {
	f := newFakeServer()
	newest := f.addChat("only")
	ctrl := newTestController(t, f, nil)

	require.NoError(t, ctrl.LoadChats(context.Background(), 999))
	assert.Equal(t, newest.ID, ctrl.Selected())
}

func TestSendBlankInputIsNoOp(t *testing.T) {
	f := newFakeServer()
	f.addChat("a chat")
	ctrl := newTestController(t, f, nil)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	for _, text := range []string{"", "   ", "\n\t "} {
		sent, err := ctrl.Send(context.Background(), text)
		require.NoError(t, err)
		assert.False(t, sent)
	}

	assert.Equal(t, 0, f.sendCalls)
	assert.Empty(t, ctrl.Messages())
}

func TestSendWithoutSelectionIsNoOp(t *testing.T) {
	f := newFakeServer()
	ctrl := newTestController(t, f, nil)

	sent, err := ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 0, f.sendCalls)
}

func TestSendAppendsUserAndAssistantMessages(t *testing.T) {
	f := newFakeServer()
	f.addChat("a chat")
	f.answer = "the answer"
	f.sources = []models.Source{{Index: 1, URL: "https://example.org/doc", Title: "Doc"}}
	ctrl := newTestController(t, f, nil)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	sent, err := ctrl.Send(context.Background(), "  a question  ")
	require.NoError(t, err)
	assert.True(t, sent)

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "a question", msgs[0].Content, "input is trimmed")
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "the answer", msgs[1].Content)
	require.Len(t, msgs[1].Sources, 1)
	assert.Equal(t, "https://example.org/doc", msgs[1].Sources[0].URL)
}

func TestSendFailureKeepsUserMessageAndShowsError(t *testing.T) {
	f := newFakeServer()
	f.addChat("a chat")
	f.failSend = "model unavailable"
	ctrl := newTestController(t, f, nil)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	sent, err := ctrl.Send(context.Background(), "a question")
	require.NoError(t, err, "send failures render inline, they are not returned")
	assert.True(t, sent)

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role, "optimistic message is not rolled back")
	assert.Equal(t, "a question", msgs[0].Content)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.True(t, strings.Contains(msgs[1].Content, "model unavailable"))
}

func TestSendRefreshesTitleOfNewChat(t *testing.T) {
	f := newFakeServer()
	ctrl := newTestController(t, f, nil)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0)) // auto-creates "New chat"

	_, err := ctrl.Send(context.Background(), "what is the CIS index?")
	require.NoError(t, err)

	ch := ctrl.SelectedChat()
	require.NotNil(t, ch)
	assert.Equal(t, "what is the CIS index?", ch.Title)
}

func TestViewNotifiedOnLoad(t *testing.T) {
	f := newFakeServer()
	f.addChat("older")
	newest := f.addChat("newest")
	view := &recordingView{}
	ctrl := newTestController(t, f, view)

	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	assert.Equal(t, []string{"chats", "selection", "messages"}, view.events)
	assert.Len(t, view.chats, 2)
	assert.Equal(t, newest.ID, view.selected)
	assert.Empty(t, view.msgs)
}

func TestViewNotifiedOnSend(t *testing.T) {
	f := newFakeServer()
	f.addChat("a chat")
	f.answer = "the answer"
	view := &recordingView{}
	ctrl := newTestController(t, f, view)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	view.events = nil
	_, err := ctrl.Send(context.Background(), "a question")
	require.NoError(t, err)

	assert.Equal(t, []string{"append", "append"}, view.events)
	require.Len(t, view.appended, 2)
	assert.Equal(t, models.RoleUser, view.appended[0].Role)
	assert.Equal(t, "a question", view.appended[0].Content)
	assert.Equal(t, models.RoleAssistant, view.appended[1].Role)
	assert.Equal(t, "the answer", view.appended[1].Content)
}

func TestViewNotifiedOnSendFailure(t *testing.T) {
	f := newFakeServer()
	f.addChat("a chat")
	f.failSend = "model unavailable"
	view := &recordingView{}
	ctrl := newTestController(t, f, view)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	view.events = nil
	_, err := ctrl.Send(context.Background(), "a question")
	require.NoError(t, err)

	assert.Equal(t, []string{"append", "append"}, view.events)
	require.Len(t, view.appended, 2)
	assert.Equal(t, models.RoleUser, view.appended[0].Role)
	assert.Equal(t, models.RoleAssistant, view.appended[1].Role)
	assert.True(t, strings.Contains(view.appended[1].Content, "model unavailable"))
}

func TestViewNotifiedOfRetitle(t *testing.T) {
	f := newFakeServer()
	view := &recordingView{}
	ctrl := newTestController(t, f, view)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0)) // auto-creates "New chat"

	view.events = nil
	_, err := ctrl.Send(context.Background(), "what is the CIS index?")
	require.NoError(t, err)

	assert.Equal(t, []string{"append", "append", "chats"}, view.events)
	require.Len(t, view.chats, 1)
	assert.Equal(t, "what is the CIS index?", view.chats[0].Title)
}

func TestNewChatSelectsCreatedChat(t *testing.T) {
	f := newFakeServer()
	f.addChat("existing")
	ctrl := newTestController(t, f, nil)
	require.NoError(t, ctrl.LoadChats(context.Background(), 0))

	require.NoError(t, ctrl.NewChat(context.Background()))

	require.Len(t, ctrl.Chats(), 2)
	assert.Equal(t, ctrl.Chats()[0].ID, ctrl.Selected(), "new chat is newest, listed first, and selected")
	assert.Empty(t, ctrl.Messages())
}
