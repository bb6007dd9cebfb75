package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	GroupID: "tasks",
	Short:   "Create, list, and update tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks visible to the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		view := app.engine.Visible()
		if len(view.Tasks) == 0 {
			fmt.Println("No tasks")
			return nil
		}

		for _, task := range view.Tasks {
			mark := ui.RenderDim("○")
			if task.String("status") == model.StatusCompleted {
				mark = ui.RenderPass("●")
			}
			line := fmt.Sprintf("%s %s  %s", mark, ui.RenderAccent(task.ID()), task.String("title"))
			if who := assigneeName(view.Users, task.String("assignedTo")); who != "" {
				line += ui.RenderDim(" @" + who)
			}
			if deadline := task.String("deadline"); deadline != "" {
				line += ui.RenderDim("  due " + shortDate(deadline))
			}
			fmt.Println(line)
		}
		return nil
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		task := model.Record{"title": strings.Join(args, " ")}
		if v, _ := cmd.Flags().GetString("category"); v != "" {
			task["category"] = v
		}
		if v, _ := cmd.Flags().GetString("priority"); v != "" {
			task["priority"] = v
		}
		if v, _ := cmd.Flags().GetString("assign"); v != "" {
			task["assignedTo"] = v
		}
		if v, _ := cmd.Flags().GetString("notes"); v != "" {
			task["notes"] = v
		}
		if v, _ := cmd.Flags().GetString("due"); v != "" {
			due, err := parseDate(v)
			if err != nil {
				return err
			}
			task["deadline"] = due.UTC().Format(time.RFC3339)
		}

		app.actions.CreateTask(task)

		created := app.engine.Tasks()[0]
		fmt.Printf("%s Created task %s\n", ui.RenderPass("✓"), ui.RenderAccent(created.ID()))
		return nil
	},
}

var taskRangeCmd = &cobra.Command{
	Use:   "range <title>",
	Short: "Create one task per day over a date range",
	Long: `Create a copy of the task for every day between --from and --to,
inclusive. Each copy's deadline lands on its day at the --at time.

Dates accept natural language ("next monday") or YYYY-MM-DD.`,
	Args: cobra.MinimumNArgs(1),
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
		at, _ := cmd.Flags().GetString("at")

		from, err := parseDate(fromStr)
		if err != nil {
			return err
		}
		to, err := parseDate(toStr)
		if err != nil {
			return err
		}

		task := model.Record{"title": strings.Join(args, " ")}
		if v, _ := cmd.Flags().GetString("assign"); v != "" {
			task["assignedTo"] = v
		}

		before := len(app.engine.Tasks())
		app.actions.CreateTaskRange(task, at, from, to)
		created := len(app.engine.Tasks()) - before

		fmt.Printf("%s Created %d tasks (%s to %s)\n", ui.RenderPass("✓"),
			created, from.Format("2006-01-02"), to.Format("2006-01-02"))
		return nil
	},
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle a task between pending and completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		app.actions.ToggleTaskStatus(args[0])

		task := model.FindByID(app.engine.Tasks(), args[0])
		if task == nil {
			return fmt.Errorf("task %s not found", args[0])
		}
		fmt.Printf("%s Task %s is now %s\n", ui.RenderPass("✓"), args[0], task.String("status"))
		return nil
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		app.actions.DeleteTask(args[0])
		fmt.Printf("%s Deleted task %s\n", ui.RenderPass("✓"), args[0])
		return nil
	},
}

var taskNotesCmd = &cobra.Command{
	Use:   "notes <id> <text>",
	Short: "Replace a task's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		app.requireActor()

		app.actions.UpdateTaskNotes(args[0], strings.Join(args[1:], " "))
		fmt.Printf("%s Updated notes on task %s\n", ui.RenderPass("✓"), args[0])
		return nil
	},
}

// parseDate accepts YYYY-MM-DD or natural language like "next friday".
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(s, time.Now())
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("could not parse date %q", s)
	}
	return r.Time, nil
}

func assigneeName(users []model.Record, id string) string {
	if id == "" {
		return ""
	}
	if u := model.FindByID(users, id); u != nil {
		return u.String("fullName")
	}
	return id
}

func shortDate(rfc3339 string) string {
	if t, err := time.Parse(time.RFC3339, rfc3339); err == nil {
		return t.Format("Jan 2 15:04")
	}
	return rfc3339
}

func init() {
	taskAddCmd.Flags().String("category", "", "Task category")
	taskAddCmd.Flags().String("priority", "", "Task priority")
	taskAddCmd.Flags().String("assign", "", "Assignee user id")
	taskAddCmd.Flags().String("notes", "", "Task notes")
	taskAddCmd.Flags().String("due", "", "Deadline (YYYY-MM-DD or natural language)")

	taskRangeCmd.Flags().String("from", "", "First day (inclusive)")
	taskRangeCmd.Flags().String("to", "", "Last day (inclusive)")
	taskRangeCmd.Flags().String("at", "09:00", "Time of day for each deadline (HH:MM)")
	taskRangeCmd.Flags().String("assign", "", "Assignee user id")
	_ = taskRangeCmd.MarkFlagRequired("from")
	_ = taskRangeCmd.MarkFlagRequired("to")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskRangeCmd)
	taskCmd.AddCommand(taskToggleCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskNotesCmd)
	rootCmd.AddCommand(taskCmd)
}
