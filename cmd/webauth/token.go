package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/udisondev/webauth/pkg/audit"
	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/webauth"
)

var (
	tokenAccount    string
	tokenMemo       uint64
	tokenHomeDomain string
	tokenInspect    bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Authenticate the configured account and print the token",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenAccount, "account", "", "account to authenticate, G... or M... (default: address of auth.key_file)")
	f.Uint64Var(&tokenMemo, "memo", 0, "memo id of a shared account")
	f.StringVar(&tokenHomeDomain, "home-domain", "", "home domain to request (default: server home domain)")
	f.BoolVar(&tokenInspect, "inspect", false, "print token claims instead of the raw token")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	keys, err := identity.LoadFromFile(cfg.Auth.KeyFile)
	if err != nil {
		return fmt.Errorf("load account key: %w", err)
	}

	var reporter webauth.Reporter
	if cfg.Audit.Enabled {
		client, err := audit.Connect(audit.Config{
			URLs:          cfg.Audit.URLs,
			ReconnectWait: cfg.Audit.ReconnectWait,
			MaxReconnects: cfg.Audit.MaxReconnects,
			SubjectPrefix: cfg.Audit.SubjectPrefix,
		})
		if err != nil {
			return fmt.Errorf("connect audit: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				slog.Warn("audit: close failed", "error", err)
			}
		}()
		reporter = audit.NewPublisher(client)
	}

	engine, err := newEngine(ctx, cfg, reporter)
	if err != nil {
		return err
	}
	defer engine.Close()

	req := webauth.Request{
		Account:    tokenAccount,
		Signers:    []identity.Signer{keys},
		HomeDomain: tokenHomeDomain,
	}
	if req.Account == "" {
		req.Account = keys.Address()
	}
	if cmd.Flags().Changed("memo") {
		memo := tokenMemo
		req.Memo = &memo
	}
	if err := applyClientDomain(&req, cfg.ClientDomain); err != nil {
		return err
	}

	token, err := engine.Authenticate(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !tokenInspect {
		fmt.Fprintln(out, token)
		return nil
	}

	t, err := webauth.ParseToken(token)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "subject:       %s\n", t.Subject)
	fmt.Fprintf(out, "issuer:        %s\n", t.Issuer)
	if t.ClientDomain != "" {
		fmt.Fprintf(out, "client domain: %s\n", t.ClientDomain)
	}
	fmt.Fprintf(out, "issued at:     %s\n", t.IssuedAt)
	fmt.Fprintf(out, "expires at:    %s\n", t.ExpiresAt)
	return nil
}
