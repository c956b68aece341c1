package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in to the chat server",
	Long: `Log in to the chat server and store the session cookie.

The password is read from the terminal without echo.

Examples:
  cischat login
  cischat login alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create a new account",
	Long: `Create a new account on the chat server.

The server requires a username of at least 3 characters and a password
of at least 6.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, password, err := readCredentials(args, false)
	if err != nil {
		return err
	}

	if err := apiClient.Login(context.Background(), username, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	fmt.Printf("Logged in as %s.\n", username)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	username, password, err := readCredentials(args, true)
	if err != nil {
		return err
	}

	if err := apiClient.Register(context.Background(), username, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Printf("Account %s created. Run 'cischat login %s' to sign in.\n", username, username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := apiClient.Logout(context.Background()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	fmt.Println("Logged out.")
	return nil
}

// readCredentials collects a username and password from args and the
// terminal. With confirm set, the password is asked for twice.
func readCredentials(args []string, confirm bool) (string, string, error) {
	var username string
	if len(args) == 1 {
		username = args[0]
	} else {
		fmt.Print("Username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return "", "", err
	}

	if confirm {
		again, err := readPassword("Repeat password: ")
		if err != nil {
			return "", "", err
		}
		if password != again {
			return "", "", fmt.Errorf("passwords do not match")
		}
	}

	return username, password, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
