package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"provider case-insensitive", func(c *Config) { c.Provider = "FlixHQ" }, false},
		{"unknown provider", func(c *Config) { c.Provider = "netflix" }, true},
		{"auto quality", func(c *Config) { c.Quality = "auto" }, false},
		{"bad quality", func(c *Config) { c.Quality = "9000" }, true},
		{"bad base scheme", func(c *Config) { c.FlixHQBase = "ftp://flixhq.to" }, true},
		{"empty base", func(c *Config) { c.SoaperBase = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != Default().Provider {
		t.Errorf("Provider = %q, want default %q", cfg.Provider, Default().Provider)
	}
}

func TestLoadMergesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	content := "provider = \"soaper\"\nquality = \"720\"\nsoaper_base = \"https://soaper.example\"\n"
	if err := os.MkdirAll(filepath.Join(dir, "remora"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "remora", "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "soaper" || cfg.Quality != "720" {
		t.Errorf("merged config = %+v", cfg)
	}
	if cfg.SoaperBase != "https://soaper.example" {
		t.Errorf("SoaperBase = %q", cfg.SoaperBase)
	}
	// untouched keys keep their defaults
	if cfg.FlixHQBase != Default().FlixHQBase {
		t.Errorf("FlixHQBase = %q, want default", cfg.FlixHQBase)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := os.MkdirAll(filepath.Join(dir, "remora"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "remora", "config.toml"), []byte("provider = \"netflix\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load accepted a config with an unknown provider")
	}
}
