package cli

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/model"
	"github.com/spf13/cobra"
)

// localDueLayout is accepted by --due alongside RFC 3339.
const localDueLayout = "2006-01-02 15:04"

// parseDue reads a due date as RFC 3339 or, without a zone, as local time in loc.
func parseDue(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localDueLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q (want RFC3339 or %q)", s, localDueLayout)
	}
	return t, nil
}

func listCmd(opts *rootOptions) *cobra.Command {
	var (
		search string
		view   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := viewRenderer(view)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.Load(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), renderer(a.ctrl.Search(search), a.ctrl.Notified, time.Now(), time.Local))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only tasks whose title or description contains this text")
	cmd.Flags().StringVar(&view, "view", "list", "Layout: list, board or calendar")

	return cmd
}

func addCmd(opts *rootOptions) *cobra.Command {
	var title, description, due string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dueAt, err := parseDue(due, time.Local)
			if err != nil {
				return err
			}
			req := model.CreateRequest{Title: title, DueDate: dueAt}
			if description != "" {
				req.Description = &description
			}

			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.Load(cmd.Context())
			task, err := a.ctrl.Create(cmd.Context(), req)
			if err != nil {
				a.log.WithError(err).Error("failed to create task")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", `Due date, RFC3339 or "2006-01-02 15:04" local time`)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func editCmd(opts *rootOptions) *cobra.Command {
	var title, description, due string
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a task's title, description or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req model.UpdateRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("due") {
				dueAt, err := parseDue(due, time.Local)
				if err != nil {
					return err
				}
				req.DueDate = &dueAt
			}
			if req.Title == nil && req.Description == nil && req.DueDate == nil {
				return fmt.Errorf("nothing to change, pass --title, --description or --due")
			}

			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.Load(cmd.Context())
			task, err := a.ctrl.Update(cmd.Context(), args[0], req)
			if err != nil {
				a.log.WithError(err).WithField("task_id", args[0]).Error("failed to update task")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", `New due date, RFC3339 or "2006-01-02 15:04" local time`)

	return cmd
}

func completeCmd(opts *rootOptions, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.Load(cmd.Context())
			task, err := a.ctrl.SetCompleted(cmd.Context(), args[0], completed)
			if err != nil {
				a.log.WithError(err).WithField("task_id", args[0]).Error("failed to update task")
				return err
			}
			state := "open"
			if task.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", task.ID, state)
			return nil
		},
	}
}

func removeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.Load(cmd.Context())
			if err := a.ctrl.Delete(cmd.Context(), args[0]); err != nil {
				a.log.WithError(err).WithField("task_id", args[0]).Error("failed to delete task")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
