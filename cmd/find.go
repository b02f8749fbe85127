package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"remora/internal/media"
	"remora/internal/ui"
)

var (
	flagYear     string
	flagAltTitle string
	flagFindTV   bool
)

// titleFinder is implemented by providers whose pages are addressed by
// slug rather than by a stable id.
type titleFinder interface {
	FindByTitle(ctx context.Context, title, altTitle, year string, mediaType media.MediaType) (*media.Content, error)
}

var findCmd = &cobra.Command{
	Use:   "find <title>",
	Short: "Locate a title on a slug-addressed provider",
	Args:  cobra.MinimumNArgs(1),
	RunE:  findRun,
}

func init() {
	findCmd.Flags().StringVar(&flagYear, "year", "", "Release year to disambiguate")
	findCmd.Flags().StringVar(&flagAltTitle, "alt", "", "Alternate title to also try")
	findCmd.Flags().BoolVar(&flagFindTV, "tv", false, "Look for a TV show")
	rootCmd.AddCommand(findCmd)
}

func findRun(cmd *cobra.Command, args []string) error {
	p, err := buildProvider()
	if err != nil {
		return err
	}

	finder, ok := p.(titleFinder)
	if !ok {
		return fmt.Errorf("provider %s does not support title lookup; use search", p.Name())
	}

	mediaType := media.Movie
	if flagFindTV {
		mediaType = media.TV
	}

	c, err := finder.FindByTitle(cmd.Context(), strings.Join(args, " "), flagAltTitle, flagYear, mediaType)
	if err != nil {
		return fmt.Errorf("finding title: %w", err)
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(c)
	}
	fmt.Print(ui.RenderDetails(c))
	return nil
}
