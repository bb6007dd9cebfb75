package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/settings"
	"github.com/taskpilot/taskpilot/internal/ui"
)

var loginCmd = &cobra.Command{
	Use:   "login [user-id]",
	Short: "Choose which user to act as",
	Long: `Select the user account that commands act as.

With no argument an interactive picker lists the known users. The
choice is stored in settings and restored on every later command.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())

		users := app.engine.Users()
		if len(users) == 0 {
			return fmt.Errorf("no users available (is the server reachable?)")
		}

		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			options := make([]huh.Option[string], 0, len(users))
			for _, u := range users {
				label := fmt.Sprintf("%s (%s)", u.String("fullName"), u.Role())
				options = append(options, huh.NewOption(label, u.ID()))
			}

			form := huh.NewForm(huh.NewGroup(
				huh.NewSelect[string]().
					Title("Log in as").
					Options(options...).
					Value(&id),
			))
			if err := form.Run(); err != nil {
				return fmt.Errorf("login cancelled: %w", err)
			}
		}

		actor := model.FindByID(users, id)
		if actor == nil {
			return fmt.Errorf("user %s not found", id)
		}

		if err := app.settings.Set(settings.KeyActorID, id); err != nil {
			return err
		}
		fmt.Printf("%s Logged in as %s (%s)\n", ui.RenderPass("✓"),
			ui.RenderAccent(actor.String("fullName")), actor.Role())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored login",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("config-dir")
		if dir == "" {
			var err error
			dir, err = settings.DefaultDir()
			if err != nil {
				return err
			}
		}
		st, err := settings.Open(dir)
		if err != nil {
			return err
		}
		if err := st.Set(settings.KeyActorID, ""); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
