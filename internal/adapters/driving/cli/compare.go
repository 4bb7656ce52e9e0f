package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

var (
	compareJSON          bool
	compareLeftSnapshot  string
	compareRightSnapshot string
	compareOnlyDiff      bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [left-listing-id] [right-listing-id]",
	Short: "Compare two listings field by field",
	Long: `Compare two listings field by field over the union of their fields.

Either side can be pinned to a historical snapshot with --left-snapshot or
--right-snapshot. Comparing a listing with itself at two snapshots shows what
changed between captures.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output as JSON")
	compareCmd.Flags().StringVar(&compareLeftSnapshot, "left-snapshot", "", "pin the left listing to a snapshot")
	compareCmd.Flags().StringVar(&compareRightSnapshot, "right-snapshot", "", "pin the right listing to a snapshot")
	compareCmd.Flags().BoolVar(&compareOnlyDiff, "diff", false, "only show fields that differ")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := requireService("comparison", comparisonService != nil); err != nil {
		return err
	}
	cmp, err := comparisonService.Compare(cmd.Context(), driving.CompareRequest{
		LeftID:          args[0],
		RightID:         args[1],
		LeftSnapshotID:  compareLeftSnapshot,
		RightSnapshotID: compareRightSnapshot,
	})
	if err != nil {
		return fmt.Errorf("failed to compare: %w", err)
	}
	if compareJSON {
		return printJSON(cmd, cmp)
	}

	rows := make([][]string, 0, len(cmp.Fields))
	for _, row := range cmp.Fields {
		if compareOnlyDiff && !row.Different {
			continue
		}
		marker := successStyle.Render("=")
		if row.Different {
			marker = warningStyle.Render("≠")
		}
		rows = append(rows, []string{row.Field, sideValue(row.Left), marker, sideValue(row.Right)})
	}
	if len(rows) == 0 {
		cmd.Println("No differing fields.")
		return nil
	}
	cmd.Println(renderTable([]string{"Field", "Left", "", "Right"}, rows))
	cmd.Println(mutedStyle.Render(fmt.Sprintf("%d of %d fields differ", len(cmp.DifferentFields()), len(cmp.Fields))))
	return nil
}

func sideValue(f *domain.Field) string {
	if f == nil {
		return mutedStyle.Render("absent")
	}
	return formatValue(f.Value)
}
