package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yonatanwolf/cischat/internal/models"
	"github.com/yonatanwolf/cischat/internal/render"
)

var exportChatID int

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export chats as HTML transcripts",
	Long: `Export chats as standalone HTML transcript files.

One file is written per chat, named after the chat id and title.

Examples:
  cischat export ./transcripts
  cischat export ./transcripts --chat 12`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportChatID, "chat", 0, "export only this chat")
}

func runExport(cmd *cobra.Command, args []string) error {
	exportPath := args[0]
	ctx := context.Background()

	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	chats, err := apiClient.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	if exportChatID != 0 {
		filtered := chats[:0]
		for _, ch := range chats {
			if ch.ID == exportChatID {
				filtered = append(filtered, ch)
			}
		}
		chats = filtered
		if len(chats) == 0 {
			return fmt.Errorf("chat not found: %d", exportChatID)
		}
	}

	if len(chats) == 0 {
		fmt.Println("No chats to export.")
		return nil
	}

	for _, ch := range chats {
		msgs, err := apiClient.Messages(ctx, ch.ID)
		if err != nil {
			return fmt.Errorf("load messages for chat %d: %w", ch.ID, err)
		}

		name := fmt.Sprintf("%d.html", ch.ID)
		if slug := models.Slugify(ch.Title); slug != "" {
			name = fmt.Sprintf("%d-%s.html", ch.ID, slug)
		}

		out := filepath.Join(exportPath, name)
		if err := os.WriteFile(out, []byte(render.Transcript(ch, msgs)), 0644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		fmt.Printf("Wrote %s (%d messages)\n", out, len(msgs))
	}

	return nil
}
