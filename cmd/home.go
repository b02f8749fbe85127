package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remora/internal/ui"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the provider's landing-page sections",
	Args:  cobra.NoArgs,
	RunE:  homeRun,
}

func homeRun(cmd *cobra.Command, args []string) error {
	p, err := buildProvider()
	if err != nil {
		return err
	}

	carousels, err := p.FetchHomeContent(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching home content: %w", err)
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(carousels)
	}
	fmt.Print(ui.RenderCarousels(carousels))
	return nil
}
