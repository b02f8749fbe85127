// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"remora/internal/config"
	"remora/internal/extract"
	"remora/internal/httputil"
	"remora/internal/provider"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagProvider string
	flagQuality  string
	flagJSON     bool
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "remora",
	Short: "Resolve streaming links from catalog sites",
	Long: `Remora scrapes movie and TV catalogs, walks their alternate-server
lists, and reverses each host's link obfuscation to produce playable
stream URLs with subtitles. It resolves; it does not play or download.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "", "Catalog provider: flixhq | primewire | hianime | soaper")
	rootCmd.PersistentFlags().StringVarP(&flagQuality, "quality", "q", "", "Preferred quality: auto | 360 | 480 | 720 | 1080")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagQuality != "" {
		cfg.Quality = flagQuality
	}
	if flagDebug {
		cfg.Debug = true
	}

	// re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logrus.SetOutput(os.Stderr)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	return nil
}

// buildProvider wires the selected provider with the shared HTTP client and
// the extractor registry.
func buildProvider() (provider.Provider, error) {
	client := httputil.NewClient()
	registry := extract.DefaultRegistry(client)

	switch strings.ToLower(cfg.Provider) {
	case "flixhq":
		return provider.NewFlixHQ(cfg.FlixHQBase, client, registry), nil
	case "primewire":
		return provider.NewPrimeWire(cfg.PrimeWireBase, client), nil
	case "hianime":
		return provider.NewHiAnime(cfg.HiAnimeBase, cfg.HiAnimeConfig, client), nil
	case "soaper":
		return provider.NewSoaper(cfg.SoaperBase, client), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
