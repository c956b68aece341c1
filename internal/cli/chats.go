package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List chats",
	Long: `List your chats in server order (newest first).

Examples:
  cischat chats
  cischat chats -v`,
	RunE: runChats,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new chat",
	RunE:  runNew,
}

var historyCmd = &cobra.Command{
	Use:   "history <chat-id>",
	Short: "Print a chat's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runChats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	chats, err := apiClient.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	if len(chats) == 0 {
		fmt.Println("No chats yet. Send a question with 'cischat ask'.")
		return nil
	}

	fmt.Printf("Chats (%d):\n\n", len(chats))
	for _, ch := range chats {
		fmt.Printf("%6d  %s\n", ch.ID, ch.Title)
		if verbose && ch.CreatedAt != "" {
			fmt.Printf("        created %s\n", ch.CreatedAt)
		}
	}

	return nil
}

func runNew(cmd *cobra.Command, args []string) error {
	chat, err := apiClient.CreateChat(context.Background())
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}

	fmt.Printf("Created chat %d.\n", chat.ID)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	chatID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid chat id %q", args[0])
	}

	msgs, err := apiClient.Messages(context.Background(), chatID)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	if len(msgs) == 0 {
		fmt.Println("No messages in this chat.")
		return nil
	}

	for _, m := range msgs {
		role := "assistant"
		if !m.IsAssistant() {
			role = "you"
		}
		fmt.Printf("[%s] %s\n", role, m.Content)
		for _, s := range m.Sources {
			title := ""
			if s.Title != "" {
				title = " " + s.Title
			}
			fmt.Printf("    [%d] %s%s\n", s.Index, s.URL, title)
		}
		fmt.Println()
	}

	return nil
}
