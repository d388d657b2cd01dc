package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		username := loginUsername
		if username == "" {
			username, err = prompt("Username: ")
			if err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			password, err = prompt("Password: ")
			if err != nil {
				return err
			}
		}

		token, err := e.api.Login(cmd.Context(), username, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := e.session.Authenticate(token); err != nil {
			return fmt.Errorf("storing session: %w", err)
		}

		fmt.Printf("Signed in as %s\n", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		if err := e.session.SignOut(); err != nil {
			return fmt.Errorf("signing out: %w", err)
		}
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		userID, err := e.session.UserID()
		if err != nil {
			return fmt.Errorf("not signed in, run \"memefeed login\" first")
		}
		token, err := e.session.Token()
		if err != nil {
			return err
		}

		user, err := e.api.GetUserByID(cmd.Context(), token, userID)
		if err != nil {
			return fmt.Errorf("fetching profile: %w", err)
		}

		fmt.Printf("%s (%s)\n", user.Username, user.ID)
		return nil
	},
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
