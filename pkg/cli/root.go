// Package cli is the duewatch command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	user    string
	api     string
	verbose bool
}

// Execute runs the root command against os.Args.
func Execute(version string) error {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "duewatch",
		Short:         "duewatch - task list with overdue alerts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "User id (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.api, "api", "", "Task API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(editCmd(opts))
	rootCmd.AddCommand(completeCmd(opts, "done", "Mark a task complete", true))
	rootCmd.AddCommand(completeCmd(opts, "reopen", "Mark a task open again", false))
	rootCmd.AddCommand(removeCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(watchCmd(opts))
	rootCmd.AddCommand(authCmd(opts))
	rootCmd.AddCommand(setCalendarCmd())

	return rootCmd
}
