package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remora/internal/provider"
	"remora/internal/ui"
)

var (
	flagSeason  string
	flagEpisode string
)

var linksCmd = &cobra.Command{
	Use:   "links <content-id>",
	Short: "Resolve playable stream links for one title or episode",
	Args:  cobra.ExactArgs(1),
	RunE:  linksRun,
}

func init() {
	linksCmd.Flags().StringVar(&flagSeason, "season", "", "Season id for TV content")
	linksCmd.Flags().StringVar(&flagEpisode, "episode", "", "Episode id for TV content")
}

func linksRun(cmd *cobra.Command, args []string) error {
	p, err := buildProvider()
	if err != nil {
		return err
	}

	links, err := p.ExtractStreamingLinks(cmd.Context(), args[0], flagSeason, flagEpisode)
	if err != nil {
		return fmt.Errorf("extracting links: %w", err)
	}

	links = provider.PreferQuality(links, cfg.Quality)

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(links)
	}
	fmt.Print(ui.RenderLinks(links))
	return nil
}
