package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/webauth/pkg/config"
)

// Переменные окружения; читаются также из .env.
const (
	envConfig      = "WEBAUTH_CONFIG"
	envSignerToken = "WEBAUTH_SIGNER_TOKEN"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "webauth",
	Short:         "Authenticate a ledger account against a web auth server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config file (default: $"+envConfig+" or XDG config dir)")

	rootCmd.AddCommand(initCmd, keygenCmd, tokenCmd, auditCmd)
}

// loadConfig загружает конфигурацию и настраивает логирование.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromAppDir()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if token := os.Getenv(envSignerToken); token != "" {
		cfg.ClientDomain.SignerToken = token
	}

	setupLogging(cfg.Log)
	return cfg, nil
}
