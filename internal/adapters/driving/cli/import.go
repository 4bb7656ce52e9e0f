package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var importJSON bool

var importCmd = &cobra.Command{
	Use:   "import [bundle.yaml]",
	Short: "Import an extraction bundle",
	Long: `Import snapshots, citations, listings, field changes and search specs
from a YAML bundle produced by the extraction pipeline.

Importing is idempotent: records already in the ledger are skipped, so a
bundle can be re-imported after a partial failure.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importJSON, "json", false, "output the import result as JSON")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := requireService("import", importService != nil); err != nil {
		return err
	}
	result, err := importService.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if importJSON {
		return printJSON(cmd, result)
	}

	cmd.Println(successStyle.Render("Imported " + args[0]))
	cmd.Printf("  Snapshots:    %d\n", result.Snapshots)
	cmd.Printf("  Evidence:     %d\n", result.Evidence)
	cmd.Printf("  Listings:     %d\n", result.Listings)
	cmd.Printf("  Changes:      %d\n", result.Changes)
	cmd.Printf("  Search specs: %d\n", result.SearchSpecs)
	if result.Skipped > 0 {
		cmd.Println(mutedStyle.Render(fmt.Sprintf("  Skipped %d already present", result.Skipped)))
	}

	if len(result.ListingIDs) > 0 {
		keys := make([]string, 0, len(result.ListingIDs))
		for k := range result.ListingIDs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{k, result.ListingIDs[k]}
		}
		cmd.Println(renderTable([]string{"Key", "Listing ID"}, rows))
	}
	return nil
}
