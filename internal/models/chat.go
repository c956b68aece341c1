// Package models holds the client-side view objects reconstructed from
// server responses. Nothing here is persisted; every fetch rebuilds them.
package models

// Message roles as stored by the server. Anything that is not RoleUser
// is displayed as an assistant message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is one conversation thread as returned by GET /api/chats.
// The server orders chats newest-first; that order is preserved as-is.
type Chat struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Message is a single turn within a chat.
type Message struct {
	ID        int      `json:"id,omitempty"`
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Sources   []Source `json:"sources,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// Source is a citation attached to an assistant message.
type Source struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// SendResult is the server's reply to POST /api/chats/{id}/send_async.
type SendResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

// IsAssistant reports whether the message renders on the assistant side.
func (m Message) IsAssistant() bool {
	return m.Role != RoleUser
}
