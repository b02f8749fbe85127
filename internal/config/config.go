// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only, so a hostile config file cannot execute
// anything.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"remora/internal/httputil"
)

// Config holds all application configuration.
type Config struct {
	Provider     string `toml:"provider"`
	Quality      string `toml:"quality"`
	SubsLanguage string `toml:"subs_language"`
	Debug        bool   `toml:"debug"`

	// Catalog origins. Sites rotate domains frequently, so every origin is
	// overridable without a rebuild.
	FlixHQBase    string `toml:"flixhq_base"`
	PrimeWireBase string `toml:"primewire_base"`
	HiAnimeBase   string `toml:"hianime_base"`
	HiAnimeConfig string `toml:"hianime_config"`
	SoaperBase    string `toml:"soaper_base"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Provider:      "flixhq",
		Quality:       "1080",
		SubsLanguage:  "english",
		FlixHQBase:    "https://flixhq.to",
		PrimeWireBase: "https://primewire.tf",
		HiAnimeBase:   "https://hianime.to",
		HiAnimeConfig: "https://raw.githubusercontent.com/enimax-anime/key/e6/key.txt",
		SoaperBase:    "https://soaper.live",
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "remora"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "remora"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// A missing config file is not an error; defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ValidProviders lists the selectable catalog providers.
var ValidProviders = []string{"flixhq", "primewire", "hianime", "soaper"}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	ok := false
	for _, p := range ValidProviders {
		if strings.EqualFold(c.Provider, p) {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unsupported provider %q (valid: %s)", c.Provider, strings.Join(ValidProviders, ", "))
	}

	validQualities := map[string]bool{
		"auto": true, "360": true, "480": true, "720": true, "1080": true,
	}
	if !validQualities[strings.ToLower(c.Quality)] {
		return fmt.Errorf("unsupported quality %q (valid: auto, 360, 480, 720, 1080)", c.Quality)
	}

	for name, base := range map[string]string{
		"flixhq_base":    c.FlixHQBase,
		"primewire_base": c.PrimeWireBase,
		"hianime_base":   c.HiAnimeBase,
		"hianime_config": c.HiAnimeConfig,
		"soaper_base":    c.SoaperBase,
	} {
		if err := httputil.ValidateURL(base); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}
