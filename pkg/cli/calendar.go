package cli

import (
	"fmt"
	"os"

	"github.com/harrisonrobin/duewatch/pkg/auth"
	"github.com/harrisonrobin/duewatch/pkg/config"
	"github.com/spf13/cobra"
)

func authCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Runs the Google OAuth flow for the calendar mirror.

credentials.json from the Google Cloud console must be in the state
directory. Any existing token is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}

			flow := &auth.Flow{Dir: cfg.StateDir, Log: log}
			tokenFile := flow.TokenPath()
			if _, err := os.Stat(tokenFile); err == nil {
				log.Infof("Removing existing token file at '%s'", tokenFile)
				if err := os.Remove(tokenFile); err != nil {
					return fmt.Errorf("could not delete token file '%s': %w. Please delete it manually", tokenFile, err)
				}
			} else if !os.IsNotExist(err) {
				log.WithError(err).Warnf("could not check token file '%s'", tokenFile)
			}

			if err := flow.Authorize(cmd.Context(), auth.CalendarScopes); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", tokenFile)
			return nil
		},
	}
}

func setCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar [name]",
		Short: "Set the Google Calendar overdue tasks are mirrored to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Calendar = args[0]
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
			return nil
		},
	}
}
