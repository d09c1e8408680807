package ctx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Settings are the persisted defaults; CLI flags override them.
type Settings struct {
	MaxFileSize        int64  `toml:"max_file_size"`
	RespectGitignore   bool   `toml:"respect_gitignore"`
	ShowHidden         bool   `toml:"show_hidden"`
	IncludeMetadata    bool   `toml:"include_metadata"`
	IncludeLineNumbers bool   `toml:"include_line_numbers"`
	MaxClipboardSize   int    `toml:"max_clipboard_size"`
	DefaultOutputDir   string `toml:"default_output_dir"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxFileSize:      1024 * 1024,
		RespectGitignore: true,
		IncludeMetadata:  false,
		MaxClipboardSize: 1024 * 1024,
	}
}

// ConfigPath returns the settings file location under the user config
// directory, or ".ctxrc" when no config directory exists.
func ConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ctxrc"
	}
	return filepath.Join(dir, "ctx", "config.toml")
}

// LoadSettings reads settings from path, layered over the defaults so a
// sparse file only overrides what it names.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s, nil
}

// LoadSettingsOrDefault reads the user settings file, falling back to
// the defaults when it is missing or unreadable.
func LoadSettingsOrDefault() Settings {
	s, err := LoadSettings(ConfigPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		// Unparseable config falls back silently; the CLI flags still work.
		return DefaultSettings()
	}
	return s
}

// Save writes the settings as TOML, creating parent directories.
func (s Settings) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
