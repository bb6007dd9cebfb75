package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/probe"
	"github.com/taskpilot/taskpilot/internal/ui"
)

var probeCmd = &cobra.Command{
	Use:     "probe",
	GroupID: "advanced",
	Short:   "Run connectivity diagnostics against the remote server",
	Long: `Run a write/read diagnostic against the remote document server.

The probe fetches the users collection, writes a throwaway diagnostic
user, verifies it persisted with a second fetch, and cleans it up.
Each step is reported with its outcome. A write that the server
acknowledges but does not persist is reported as a silent drop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())

		runner := probe.New(app.remote, app.engine, nil)
		steps := runner.Run(cmd.Context())

		failed := false
		for _, step := range steps {
			switch step.Status {
			case probe.StatusSuccess:
				fmt.Printf("%s %s", ui.RenderPass("✓"), step.Name)
			case probe.StatusError:
				failed = true
				fmt.Printf("%s %s", ui.RenderFail("✗"), step.Name)
			default:
				fmt.Printf("%s %s", ui.RenderWarn("…"), step.Name)
			}
			if step.Message != "" {
				fmt.Printf(": %s", step.Message)
			}
			fmt.Println()
			if step.Detail != nil {
				fmt.Printf("   %s\n", ui.RenderDim(fmt.Sprintf("%v", step.Detail)))
			}
		}

		if failed {
			fmt.Fprintf(os.Stderr, "\n%s Probe detected problems\n", ui.RenderFail("✗"))
			os.Exit(1)
		}
		fmt.Printf("\n%s All probe steps passed\n", ui.RenderPass("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
