// Package chat holds the client-side conversation state: the chat list,
// the selected chat, and its messages.
package chat

import (
	"context"
	"strings"

	"github.com/yonatanwolf/cischat/internal/api"
	"github.com/yonatanwolf/cischat/internal/models"
)

// newChatTitle is the title the server gives a freshly created chat.
// It is replaced by the first message's text after the first send.
const newChatTitle = "New chat"

// View receives notifications whenever the controller's state changes.
// Implementations render the change however they like; the controller
// stays independent of the display layer.
type View interface {
	ChatsUpdated(chats []models.Chat)
	SelectionChanged(id int)
	MessagesUpdated(msgs []models.Message)
	MessageAppended(msg models.Message)
}

// nopView is the View used when the caller passes nil.
type nopView struct{}

func (nopView) ChatsUpdated([]models.Chat)      {}
func (nopView) SelectionChanged(int)            {}
func (nopView) MessagesUpdated([]models.Message) {}
func (nopView) MessageAppended(models.Message)  {}

// Controller tracks which chat is open and mirrors the server's view of
// it. It is not safe for concurrent use; callers run one operation at a
// time, which is also how the event loop of the UI behaves.
type Controller struct {
	client   *api.Client
	view     View
	chats    []models.Chat
	selected int // chat id, 0 = no chat selected
	messages []models.Message
}

// NewController creates a controller with no chat selected. A nil view
// disables notifications.
func NewController(client *api.Client, view View) *Controller {
	if view == nil {
		view = nopView{}
	}
	return &Controller{client: client, view: view}
}

// Chats returns the chat list in server order.
func (c *Controller) Chats() []models.Chat {
	return c.chats
}

// Selected returns the selected chat id, or 0 if none.
func (c *Controller) Selected() int {
	return c.selected
}

// SelectedChat returns the selected chat, or nil if none.
func (c *Controller) SelectedChat() *models.Chat {
	for i := range c.chats {
		if c.chats[i].ID == c.selected {
			return &c.chats[i]
		}
	}
	return nil
}

// Messages returns the selected chat's messages oldest-first.
func (c *Controller) Messages() []models.Message {
	return c.messages
}

// LoadChats fetches the chat list and selects a chat. An account with no
// chats gets one created automatically, so after a successful load there
// is always a selection. selectID picks the chat to open when it is
// present in the list; 0 (or an unknown id) opens the first chat.
func (c *Controller) LoadChats(ctx context.Context, selectID int) error {
	chats, err := c.client.ListChats(ctx)
	if err != nil {
		return err
	}

	if len(chats) == 0 {
		created, err := c.client.CreateChat(ctx)
		if err != nil {
			return err
		}
		return c.LoadChats(ctx, created.ID)
	}

	c.chats = chats
	c.view.ChatsUpdated(chats)

	target := chats[0].ID
	if selectID != 0 {
		for _, ch := range chats {
			if ch.ID == selectID {
				target = selectID
				break
			}
		}
	}
	return c.Select(ctx, target)
}

// Select opens a chat and fetches its messages.
func (c *Controller) Select(ctx context.Context, id int) error {
	msgs, err := c.client.Messages(ctx, id)
	if err != nil {
		return err
	}
	c.selected = id
	c.messages = msgs
	c.view.SelectionChanged(id)
	c.view.MessagesUpdated(msgs)
	return nil
}

// NewChat creates a chat on the server and reloads the list with the new
// chat selected.
func (c *Controller) NewChat(ctx context.Context) error {
	created, err := c.client.CreateChat(ctx)
	if err != nil {
		return err
	}
	return c.LoadChats(ctx, created.ID)
}

// Send posts the given text to the selected chat. Blank input or a
// missing selection is a no-op and reports sent=false.
//
// The user's message is appended before the request and stays visible
// even when the send fails; a failure is appended as an assistant-styled
// message carrying the error text instead of being returned.
func (c *Controller) Send(ctx context.Context, text string) (sent bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" || c.selected == 0 {
		return false, nil
	}

	wasUntitled := false
	if ch := c.SelectedChat(); ch != nil && ch.Title == newChatTitle {
		wasUntitled = true
	}

	c.append(models.Message{
		Role:    models.RoleUser,
		Content: text,
	})

	result, err := c.client.Send(ctx, c.selected, text)
	if err != nil {
		c.append(models.Message{
			Role:    models.RoleAssistant,
			Content: "Error: " + err.Error(),
		})
		return true, nil
	}

	c.append(models.Message{
		Role:    models.RoleAssistant,
		Content: result.Answer,
		Sources: result.Sources,
	})

	// The server retitles the chat after its first message; refresh the
	// list so the sidebar shows it. Stale titles are not an error.
	if wasUntitled {
		if chats, err := c.client.ListChats(ctx); err == nil && len(chats) > 0 {
			c.chats = chats
			c.view.ChatsUpdated(chats)
		}
	}

	return true, nil
}

// append adds one message to the open chat and notifies the view.
func (c *Controller) append(msg models.Message) {
	c.messages = append(c.messages, msg)
	c.view.MessageAppended(msg)
}
