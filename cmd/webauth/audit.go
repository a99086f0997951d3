package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/udisondev/webauth/pkg/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Authentication audit events",
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print audit events from NATS until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, err := audit.Connect(audit.Config{
			URLs:          cfg.Audit.URLs,
			ReconnectWait: cfg.Audit.ReconnectWait,
			MaxReconnects: cfg.Audit.MaxReconnects,
			SubjectPrefix: cfg.Audit.SubjectPrefix,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		out := cmd.OutOrStdout()
		sub, err := audit.Subscribe(client, func(ev audit.Event) {
			fmt.Fprintf(out, "%s %s %s %s %s\n",
				ev.Started.Format("2006-01-02T15:04:05.000Z07:00"), ev.RequestID, ev.Result, ev.Account, ev.Duration)
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditTailCmd)
}
