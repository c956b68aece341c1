package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yonatanwolf/cischat/internal/chat"
)

var askChatID int

var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Send a question and print the answer",
	Long: `Send one question and print the generated answer with its sources.

Without --chat the question goes to your most recent chat; an account
with no chats gets one created automatically.

Examples:
  cischat ask "What does module 3 cover?"
  cischat ask --chat 12 "And in more detail?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askChatID, "chat", 0, "chat id to send to (default: most recent)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(args[0])
	if text == "" {
		return fmt.Errorf("nothing to send")
	}

	ctx := context.Background()

	chatID := askChatID
	if chatID == 0 {
		ctrl := chat.NewController(apiClient, nil)
		if err := ctrl.LoadChats(ctx, 0); err != nil {
			return fmt.Errorf("load chats: %w", err)
		}
		chatID = ctrl.Selected()
	}

	result, err := apiClient.Send(ctx, chatID, text)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println()
		for _, s := range result.Sources {
			title := ""
			if s.Title != "" {
				title = " " + s.Title
			}
			fmt.Printf("[%d] %s%s\n", s.Index, s.URL, title)
		}
	}

	return nil
}
