package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Load current data and show a summary",
	Long: `Load the shared data set and display a summary.

Shows whether the remote server was reachable, which user is logged in,
and how many records of each collection are visible to that user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())

		if msg := app.engine.LastError(); msg != "" {
			fmt.Printf("%s %s\n\n", ui.RenderWarn("⚠"), msg)
		} else {
			fmt.Printf("%s Connected to %s\n\n", ui.RenderPass("✓"), app.settings.RemoteURL())
		}

		actor := app.engine.Actor()
		if actor == nil {
			fmt.Printf("Logged in: %s\n", ui.RenderDim("nobody (run 'tp login')"))
			return nil
		}
		fmt.Printf("Logged in: %s (%s)\n", ui.RenderAccent(actor.String("fullName")), actor.Role())

		view := app.engine.Visible()
		fmt.Println()
		fmt.Printf("Users: %d\n", len(view.Users))
		fmt.Printf("Tasks: %d\n", len(view.Tasks))
		fmt.Printf("Templates: %d\n", len(view.Templates))
		fmt.Printf("Organizations: %d\n", len(view.Organizations))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
