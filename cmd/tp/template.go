package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/ui"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	GroupID: "tasks",
	Short:   "Manage reusable task templates",
}

var templateSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Create or update a template",
	Long: `Create or update a task template.

Items are given as repeated --item flags, each a task title. Pass --id
to update an existing template; without it a new one is created.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		id, _ := cmd.Flags().GetString("id")
		itemTitles, _ := cmd.Flags().GetStringArray("item")

		items := make([]model.Record, 0, len(itemTitles))
		for i, title := range itemTitles {
			items = append(items, model.Record{"title": title, "order": i})
		}

		tpl := model.Record{
			"name":  strings.Join(args, " "),
			"items": items,
		}
		if id != "" {
			tpl["id"] = id
		}

		app.actions.SaveTemplate(tpl)

		templates := app.engine.Templates()
		saved := templates[len(templates)-1]
		if id != "" {
			saved = model.FindByID(templates, id)
		}
		fmt.Printf("%s Saved template %s (%s, %d items)\n", ui.RenderPass("✓"),
			ui.RenderAccent(saved.String("name")), saved.ID(), len(items))
		return nil
	},
}

var templateRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		app.actions.DeleteTemplate(args[0])
		fmt.Printf("%s Deleted template %s\n", ui.RenderPass("✓"), args[0])
		return nil
	},
}

var templateAssignCmd = &cobra.Command{
	Use:   "assign <template-id> <user-id>",
	Short: "Expand a template into tasks for a user over a date range",
	Long: `Create one task per template item per day for the given user.

Tasks are created for every day between --from and --to, inclusive, in
template item order within each day.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		from, err := parseDate(fromStr)
		if err != nil {
			return err
		}
		to, err := parseDate(toStr)
		if err != nil {
			return err
		}

		before := len(app.engine.Tasks())
		app.actions.AssignTemplateToUser(args[0], args[1], from, to)
		created := len(app.engine.Tasks()) - before

		if created == 0 {
			return fmt.Errorf("nothing created (unknown template or empty range)")
		}
		fmt.Printf("%s Created %d tasks for user %s\n", ui.RenderPass("✓"), created, args[1])
		return nil
	},
}

func init() {
	templateSaveCmd.Flags().String("id", "", "Template id to update")
	templateSaveCmd.Flags().StringArray("item", nil, "Task title (repeatable)")

	templateAssignCmd.Flags().String("from", "", "First day (inclusive)")
	templateAssignCmd.Flags().String("to", "", "Last day (inclusive)")
	_ = templateAssignCmd.MarkFlagRequired("from")
	_ = templateAssignCmd.MarkFlagRequired("to")

	templateCmd.AddCommand(templateSaveCmd)
	templateCmd.AddCommand(templateRmCmd)
	templateCmd.AddCommand(templateAssignCmd)
	rootCmd.AddCommand(templateCmd)
}
