// Package appdir управляет директорией приложения с XDG-совместимыми путями.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "webauth"

// Dir возвращает путь к директории приложения.
// Linux: ~/.config/webauth
// macOS: ~/Library/Application Support/webauth
// Windows: %AppData%\webauth
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// ConfigPath возвращает путь к файлу конфигурации.
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// KeysDir возвращает путь к директории ключей.
func KeysDir() string {
	return filepath.Join(Dir(), "keys")
}

// LogsDir возвращает путь к директории логов.
func LogsDir() string {
	return filepath.Join(Dir(), "logs")
}

// KeyPath возвращает путь к seed аккаунта.
func KeyPath() string {
	return filepath.Join(KeysDir(), "account.seed")
}

// LogFilePath возвращает путь к файлу логов.
func LogFilePath() string {
	return filepath.Join(LogsDir(), "webauth.log")
}

// Init инициализирует директорию приложения.
// Создаёт поддиректории, дефолтный конфиг и ключ аккаунта.
func Init() error {
	dirs := []string{Dir(), KeysDir(), LogsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := ensureDefaultConfig(); err != nil {
		return fmt.Errorf("ensure default config: %w", err)
	}

	if err := ensureKey(); err != nil {
		return fmt.Errorf("ensure account key: %w", err)
	}

	return nil
}

// ensureDefaultConfig создаёт дефолтный конфиг если его нет.
func ensureDefaultConfig() error {
	configPath := ConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	return writeDefaultConfig(configPath)
}
