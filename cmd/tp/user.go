package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/ui"
)

var userCmd = &cobra.Command{
	Use:     "user",
	GroupID: "admin",
	Short:   "Manage users in your organization",
}

var userAddCmd = &cobra.Command{
	Use:   "add <full name>",
	Short: "Create a user in the logged-in user's organization",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		role, _ := cmd.Flags().GetString("role")
		username, _ := cmd.Flags().GetString("username")

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		user := model.Record{
			"fullName": strings.Join(args, " "),
			"role":     role,
			"password": password,
		}
		if username != "" {
			user["username"] = username
		}

		before := len(app.engine.Users())
		app.actions.CreateUser(user)
		if len(app.engine.Users()) == before {
			return fmt.Errorf("user was not created")
		}

		created := app.engine.Users()[len(app.engine.Users())-1]
		fmt.Printf("%s Created user %s (%s)\n", ui.RenderPass("✓"),
			ui.RenderAccent(created.String("fullName")), created.ID())
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <id>",
	Short: "Reset a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		if model.FindByID(app.engine.Users(), args[0]) == nil {
			return fmt.Errorf("user %s not found", args[0])
		}

		password, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		app.actions.ResetUserPassword(args[0], password)
		fmt.Printf("%s Password reset for user %s\n", ui.RenderPass("✓"), args[0])
		return nil
	},
}

// promptPassword reads a password without echo, falling back to plain
// stdin when not attached to a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

func init() {
	userAddCmd.Flags().String("role", "STAFF", "User role (ADMIN or STAFF)")
	userAddCmd.Flags().String("username", "", "Login username")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userPasswdCmd)
	rootCmd.AddCommand(userCmd)
}
