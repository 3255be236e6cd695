package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/notify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const ackHint = "Press Enter to acknowledge"

func checkCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one overdue check now and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.Load(cmd.Context())
			a.ctrl.Check()

			// Drain the queue so every batch is printed before exit.
			shown := len(a.alert.Open()) > 0
			for a.alert.Acknowledge() {
			}
			if !shown {
				fmt.Fprintln(cmd.OutOrStdout(), "No newly overdue tasks.")
			}
			return nil
		},
	}
}

func watchCmd(opts *rootOptions) *cobra.Command {
	var reload time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep checking for overdue tasks until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts, cmd.OutOrStdout(), ackHint)
			if err != nil {
				return err
			}
			defer a.Close()

			tasks := a.ctrl.Load(ctx)
			a.log.WithFields(logrus.Fields{
				"tasks":    len(tasks),
				"interval": a.cfg.CheckInterval.String(),
			}).Info("watching for overdue tasks")

			go acknowledgeOnEnter(ctx, cmd.InOrStdin(), a.alert)

			if reload <= 0 {
				<-ctx.Done()
				return nil
			}
			ticker := time.NewTicker(reload)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					tasks := a.ctrl.Load(ctx)
					a.log.WithField("tasks", len(tasks)).Debug("reloaded tasks")
				}
			}
		},
	}

	cmd.Flags().DurationVar(&reload, "reload", 5*time.Minute, "How often to re-fetch tasks from the API (0 disables)")

	return cmd
}

// acknowledgeOnEnter dismisses the open alert each time a line is read from in.
func acknowledgeOnEnter(ctx context.Context, in io.Reader, alert *notify.Alert) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		alert.Acknowledge()
	}
}
