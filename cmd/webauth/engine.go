package main

import (
	"context"
	"fmt"

	"github.com/udisondev/webauth/pkg/config"
	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/webauth"
)

// engineOptions переводит конфигурацию в опции Engine.
func engineOptions(cfg *config.Config, reporter webauth.Reporter) []webauth.Option {
	opts := []webauth.Option{
		webauth.WithTimeout(cfg.Auth.Timeout),
		webauth.WithUserAgent(cfg.Auth.UserAgent),
		webauth.WithReporter(reporter),
	}
	if cfg.Auth.RateLimitPerSec > 0 {
		opts = append(opts, webauth.WithRateLimit(cfg.Auth.RateLimitPerSec, cfg.Auth.RateLimitBurst))
	}
	return opts
}

// newEngine создаёт Engine по конфигурации: по домену или по явным параметрам.
func newEngine(ctx context.Context, cfg *config.Config, reporter webauth.Reporter) (*webauth.Engine, error) {
	opts := engineOptions(cfg, reporter)

	if cfg.Server.Domain != "" {
		e, err := webauth.FromDomain(ctx, cfg.Server.Domain, cfg.Network.Passphrase, opts...)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", cfg.Server.Domain, err)
		}
		return e, nil
	}

	return webauth.New(webauth.Config{
		AuthEndpoint:      cfg.Server.AuthEndpoint,
		NetworkPassphrase: cfg.Network.Passphrase,
		ServerSigningKey:  cfg.Server.SigningKey,
		ServerHomeDomain:  cfg.Server.HomeDomain,
		GracePeriod:       cfg.Auth.GracePeriod,
	}, opts...)
}

// applyClientDomain заполняет подпись client domain из конфигурации.
// Локальный ключ имеет приоритет над сервером подписи.
func applyClientDomain(req *webauth.Request, cfg config.ClientDomainConfig) error {
	if cfg.Domain == "" {
		return nil
	}
	req.ClientDomain = cfg.Domain

	switch {
	case cfg.KeyFile != "":
		kp, err := identity.LoadFromFile(cfg.KeyFile)
		if err != nil {
			return fmt.Errorf("load client domain key: %w", err)
		}
		req.ClientDomainKey = kp
	case cfg.SignerURL != "":
		req.ClientDomainSigner = webauth.RemoteSigner{URL: cfg.SignerURL, Token: cfg.SignerToken}
	}
	return nil
}
