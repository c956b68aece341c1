// Package render builds HTML fragments for chat transcripts.
//
// The markup mirrors the chat web page: role-styled message bubbles with
// an optional numbered source list under assistant answers.
package render

import (
	"fmt"
	"strings"

	"github.com/yonatanwolf/cischat/internal/models"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five HTML-significant characters in untrusted
// text. Already-safe text passes through unchanged.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// EscapeAttr escapes text placed into an HTML attribute value. It uses
// the same character set as EscapeHTML and deliberately does not
// validate URL schemes; the web client never did.
func EscapeAttr(s string) string {
	return htmlEscaper.Replace(s)
}

// Message renders one message bubble. Any role other than "user" is
// styled as assistant. Sources render only under assistant messages.
func Message(role, content string, sources []models.Source) string {
	side := "assistant"
	if role == models.RoleUser {
		side = "user"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="msg %s">`, side)
	fmt.Fprintf(&b, `<div class="bubble">%s</div>`, EscapeHTML(content))

	if side == "assistant" && len(sources) > 0 {
		b.WriteString(`<div class="sources">`)
		for _, s := range sources {
			fmt.Fprintf(&b, `<a class="source" href="%s" target="_blank">[%d]</a>`, EscapeAttr(s.URL), s.Index)
			if s.Title != "" {
				fmt.Fprintf(&b, ` %s`, EscapeHTML(s.Title))
			}
		}
		b.WriteString(`</div>`)
	}

	b.WriteString(`</div>`)
	return b.String()
}

// ChatItem renders one entry of the chat list.
func ChatItem(chat models.Chat, active bool) string {
	class := "chatitem"
	if active {
		class += " active"
	}
	return fmt.Sprintf(`<div class="%s" data-id="%d">%s</div>`, class, chat.ID, EscapeHTML(chat.Title))
}

// Transcript renders a standalone HTML document for one chat.
func Transcript(chat models.Chat, messages []models.Message) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", EscapeHTML(chat.Title))
	b.WriteString("<style>\n" + transcriptCSS + "</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", EscapeHTML(chat.Title))
	b.WriteString(`<div id="messages">` + "\n")
	for _, m := range messages {
		b.WriteString(Message(m.Role, m.Content, m.Sources))
		b.WriteString("\n")
	}
	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

const transcriptCSS = `body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.msg { display: flex; margin: .5rem 0; }
.msg.user { justify-content: flex-end; }
.bubble { padding: .5rem .75rem; border-radius: .75rem; background: #eee; white-space: pre-wrap; }
.msg.user .bubble { background: #cde3ff; }
.sources { font-size: .85rem; margin: .25rem .5rem; color: #555; }
.source { margin-right: .25rem; }
`
