package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var hundred = decimal.NewFromInt(100)

var (
	nearMissJSON      bool
	nearMissThreshold float64
	specJSON          bool
)

var nearMissCmd = &cobra.Command{
	Use:   "near-miss [search-spec-id]",
	Short: "Find listings that narrowly miss a search",
	Long: `Find listings that fail exactly one numeric hard constraint of a search
spec by at most --threshold (a fraction of the bound, 0.1 = 10%).

Results are ordered closest miss first.`,
	Args: cobra.ExactArgs(1),
	RunE: runNearMiss,
}

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Inspect search specs",
}

var specListCmd = &cobra.Command{
	Use:   "list",
	Short: "List search specs",
	Args:  cobra.NoArgs,
	RunE:  runSpecList,
}

func init() {
	nearMissCmd.Flags().BoolVar(&nearMissJSON, "json", false, "output as JSON")
	nearMissCmd.Flags().Float64VarP(&nearMissThreshold, "threshold", "t", 0.1, "largest fractional overshoot, between 0 and 1")
	rootCmd.AddCommand(nearMissCmd)

	specListCmd.Flags().BoolVar(&specJSON, "json", false, "output as JSON")
	specCmd.AddCommand(specListCmd)
	rootCmd.AddCommand(specCmd)
}

func runNearMiss(cmd *cobra.Command, args []string) error {
	if err := requireService("near-miss", nearMissService != nil); err != nil {
		return err
	}
	results, err := nearMissService.Find(cmd.Context(), args[0], nearMissThreshold)
	if err != nil {
		return fmt.Errorf("near-miss search failed: %w", err)
	}
	if nearMissJSON {
		return printJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No near misses.")
		return nil
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			truncate(r.Title, 32),
			r.Constraint,
			formatValue(r.Field.Value),
			r.Overshoot.Mul(hundred).StringFixed(1) + "%",
			formatProvenance(r.Field),
		}
	}
	cmd.Println(renderTable([]string{"Listing", "Constraint", "Value", "Over by", "Evidence"}, rows))
	return nil
}

func runSpecList(cmd *cobra.Command, _ []string) error {
	if err := requireService("search spec", searchSpecService != nil); err != nil {
		return err
	}
	specs, err := searchSpecService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list search specs: %w", err)
	}
	if specJSON {
		return printJSON(cmd, specs)
	}
	if len(specs) == 0 {
		cmd.Println("No search specs.")
		return nil
	}

	rows := make([][]string, len(specs))
	for i := range specs {
		s := &specs[i]
		names := make([]string, len(s.Hard))
		for j := range s.Hard {
			names[j] = s.Hard[j].Name
		}
		rows[i] = []string{s.ID, truncate(s.Name, 24), fmt.Sprint(names)}
	}
	cmd.Println(renderTable([]string{"ID", "Name", "Constraints"}, rows))
	return nil
}
