package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"remora/internal/ui"
)

var flagPage int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the provider's catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  searchRun,
}

func init() {
	searchCmd.Flags().IntVar(&flagPage, "page", 1, "Result page to fetch")
}

func searchRun(cmd *cobra.Command, args []string) error {
	p, err := buildProvider()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	page, err := p.Search(cmd.Context(), query, flagPage)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(page)
	}
	fmt.Print(ui.RenderSearchPage(page))
	return nil
}
