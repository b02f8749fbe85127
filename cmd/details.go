package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remora/internal/media"
	"remora/internal/ui"
)

var flagTV bool

var detailsCmd = &cobra.Command{
	Use:   "details <content-id>",
	Short: "Show metadata, seasons and episodes for one title",
	Args:  cobra.ExactArgs(1),
	RunE:  detailsRun,
}

func init() {
	detailsCmd.Flags().BoolVar(&flagTV, "tv", false, "Treat the id as a TV show")
}

func detailsRun(cmd *cobra.Command, args []string) error {
	p, err := buildProvider()
	if err != nil {
		return err
	}

	mediaType := media.Movie
	if flagTV {
		mediaType = media.TV
	}

	c, err := p.FetchContentDetails(cmd.Context(), args[0], mediaType)
	if err != nil {
		return fmt.Errorf("fetching details: %w", err)
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(c)
	}
	fmt.Print(ui.RenderDetails(c))
	return nil
}
