package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

var (
	listingJSON     bool
	listingSnapshot string
	listingAsOf     string
)

var listingCmd = &cobra.Command{
	Use:   "listing",
	Short: "Inspect listings",
	Long:  `List listings, show a listing's fields with their evidence and browse its change history.`,
}

var listingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all listings",
	Args:  cobra.NoArgs,
	RunE:  runListingList,
}

var listingShowCmd = &cobra.Command{
	Use:   "show [listing-id]",
	Short: "Show a listing's fields and evidence",
	Long: `Show every field of a listing with the evidence that supports it.

Use --snapshot to see the listing as it was when a snapshot was captured,
or --as-of to see it at any instant.`,
	Args: cobra.ExactArgs(1),
	RunE: runListingShow,
}

var listingHistoryCmd = &cobra.Command{
	Use:   "history [listing-id]",
	Short: "Show a listing's change history",
	Args:  cobra.ExactArgs(1),
	RunE:  runListingHistory,
}

var listingRebuildCmd = &cobra.Command{
	Use:   "rebuild [listing-id]",
	Short: "Rebuild a listing's projection from its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runListingRebuild,
}

func init() {
	listingCmd.PersistentFlags().BoolVar(&listingJSON, "json", false, "output as JSON")
	listingShowCmd.Flags().StringVar(&listingSnapshot, "snapshot", "", "show the listing as of this snapshot")
	listingShowCmd.Flags().StringVar(&listingAsOf, "as-of", "", "show the listing as of this RFC 3339 time")
	listingCmd.AddCommand(listingListCmd)
	listingCmd.AddCommand(listingShowCmd)
	listingCmd.AddCommand(listingHistoryCmd)
	listingCmd.AddCommand(listingRebuildCmd)
	rootCmd.AddCommand(listingCmd)
}

func runListingList(cmd *cobra.Command, _ []string) error {
	if err := requireService("listing", listingService != nil); err != nil {
		return err
	}
	listings, err := listingService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list listings: %w", err)
	}
	if listingJSON {
		return printJSON(cmd, listings)
	}
	if len(listings) == 0 {
		cmd.Println("No listings.")
		return nil
	}

	rows := make([][]string, len(listings))
	for i := range listings {
		l := &listings[i]
		rows[i] = []string{l.ID, truncate(l.Title, 40), l.Neighborhood, strconv.Itoa(len(l.Fields)), strconv.FormatInt(l.Revision, 10)}
	}
	cmd.Println(renderTable([]string{"ID", "Title", "Neighborhood", "Fields", "Revision"}, rows))
	return nil
}

func runListingShow(cmd *cobra.Command, args []string) error {
	if err := requireService("listing", listingService != nil); err != nil {
		return err
	}
	ctx := cmd.Context()

	var (
		listing *domain.Listing
		err     error
	)
	switch {
	case listingAsOf != "" && listingSnapshot != "":
		return fmt.Errorf("--snapshot and --as-of are exclusive: %w", domain.ErrInvalidArgument)
	case listingAsOf != "":
		at, perr := parseAsOf(listingAsOf)
		if perr != nil {
			return perr
		}
		listing, err = listingService.GetAsOf(ctx, args[0], at)
	default:
		listing, err = listingService.Get(ctx, args[0], listingSnapshot)
	}
	if err != nil {
		return fmt.Errorf("failed to get listing: %w", err)
	}
	if listingJSON {
		return printJSON(cmd, listing)
	}

	cmd.Println(titleStyle.Render(listing.Title))
	cmd.Printf("ID:           %s\n", listing.ID)
	if listing.Neighborhood != "" {
		cmd.Printf("Neighborhood: %s\n", listing.Neighborhood)
	}
	if listing.SnapshotID != "" {
		cmd.Printf("Snapshot:     %s\n", listing.SnapshotID)
	}
	cmd.Printf("Revision:     %d\n", listing.Revision)
	cmd.Println()

	names := listing.FieldNames()
	if len(names) == 0 {
		cmd.Println("No fields.")
		return nil
	}
	rows := make([][]string, len(names))
	for i, name := range names {
		f := listing.Fields[name]
		rows[i] = []string{name, formatValue(f.Value), formatProvenance(f)}
	}
	cmd.Println(renderTable([]string{"Field", "Value", "Evidence"}, rows))
	return nil
}

func runListingHistory(cmd *cobra.Command, args []string) error {
	if err := requireService("listing", listingService != nil); err != nil {
		return err
	}
	changes, err := listingService.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if listingJSON {
		return printJSON(cmd, changes)
	}
	if len(changes) == 0 {
		cmd.Println("No changes.")
		return nil
	}

	rows := make([][]string, len(changes))
	for i := range changes {
		c := &changes[i]
		rows[i] = []string{
			formatTime(c.ChangedAt),
			c.FieldPath,
			formatValue(c.OldValue),
			formatValue(c.NewValue),
			strconv.Itoa(len(c.Evidence)),
		}
	}
	cmd.Println(renderTable([]string{"Changed", "Field", "Old", "New", "Evidence"}, rows))
	return nil
}

func runListingRebuild(cmd *cobra.Command, args []string) error {
	if err := requireService("listing", listingService != nil); err != nil {
		return err
	}
	listing, err := listingService.Rebuild(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to rebuild listing: %w", err)
	}
	if listingJSON {
		return printJSON(cmd, listing)
	}
	cmd.Printf("Rebuilt %s at revision %d (%d fields)\n", listing.ID, listing.Revision, len(listing.Fields))
	return nil
}
