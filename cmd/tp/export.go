package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "tasks",
	Short:   "Export visible tasks as CSV",
	Long: `Export the tasks visible to the logged-in user as CSV.

Writes to stdout by default, or to a file with --out. Assignee ids are
resolved to full names where possible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		csv := app.actions.ExportCSV()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			fmt.Print(csv)
			return nil
		}

		if err := os.WriteFile(out, []byte(csv), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("%s Exported to %s\n", ui.RenderPass("✓"), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}
