package appdir

import (
	"log/slog"

	"github.com/udisondev/webauth/pkg/identity"
)

// ensureKey генерирует ключ аккаунта если его нет.
func ensureKey() error {
	kp, err := identity.LoadOrGenerate(KeyPath())
	if err != nil {
		return err
	}
	slog.Debug("appdir: account key ready", "account", kp.Address())
	return nil
}
