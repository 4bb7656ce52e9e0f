package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

var (
	ledgerJSON   bool
	snapshotText bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect page snapshots",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots by capture time",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [snapshot-id]",
	Short: "Show a snapshot and the citations drawn from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Inspect and verify citations",
}

var evidenceShowCmd = &cobra.Command{
	Use:   "show [evidence-id]",
	Short: "Show a citation",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvidenceShow,
}

var evidenceVerifyCmd = &cobra.Command{
	Use:   "verify [evidence-id]",
	Short: "Check a citation still resolves against its snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvidenceVerify,
}

func init() {
	snapshotCmd.PersistentFlags().BoolVar(&ledgerJSON, "json", false, "output as JSON")
	snapshotShowCmd.Flags().BoolVar(&snapshotText, "text", false, "print the captured text")
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)

	evidenceCmd.PersistentFlags().BoolVar(&ledgerJSON, "json", false, "output as JSON")
	evidenceCmd.AddCommand(evidenceShowCmd)
	evidenceCmd.AddCommand(evidenceVerifyCmd)
	rootCmd.AddCommand(evidenceCmd)
}

func runSnapshotList(cmd *cobra.Command, _ []string) error {
	if err := requireService("snapshot", snapshotService != nil); err != nil {
		return err
	}
	snaps, err := snapshotService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	if ledgerJSON {
		return printJSON(cmd, snaps)
	}
	if len(snaps) == 0 {
		cmd.Println("No snapshots.")
		return nil
	}

	rows := make([][]string, len(snaps))
	for i := range snaps {
		s := &snaps[i]
		rows[i] = []string{s.ID, formatTime(s.CapturedAt), truncate(s.URL, 48)}
	}
	cmd.Println(renderTable([]string{"ID", "Captured", "URL"}, rows))
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	if err := requireService("snapshot", snapshotService != nil); err != nil {
		return err
	}
	ctx := cmd.Context()
	snap, err := snapshotService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	var citations []domain.Evidence
	if evidenceService != nil {
		citations, err = evidenceService.ListBySnapshot(ctx, snap.ID)
		if err != nil {
			return fmt.Errorf("failed to list citations: %w", err)
		}
	}
	if ledgerJSON {
		return printJSON(cmd, map[string]any{"snapshot": snap, "evidence": citations})
	}

	cmd.Println(titleStyle.Render(snap.URL))
	cmd.Printf("ID:       %s\n", snap.ID)
	cmd.Printf("Captured: %s\n", formatTime(snap.CapturedAt))
	cmd.Printf("Hash:     %s\n", snap.ContentHash)
	if snap.SourceID != "" {
		cmd.Printf("Source:   %s\n", snap.SourceID)
	}
	if !snap.Intact() {
		cmd.Println(errorStyle.Render("Text no longer matches its content hash."))
	}
	if snapshotText {
		cmd.Println()
		cmd.Println(snap.Text)
	}
	cmd.Println()

	if len(citations) == 0 {
		cmd.Println("No citations.")
		return nil
	}
	rows := make([][]string, len(citations))
	for i := range citations {
		rows[i] = evidenceRow(&citations[i])
	}
	cmd.Println(renderTable([]string{"ID", "Kind", "Span", "Excerpt"}, rows))
	return nil
}

func evidenceRow(ev *domain.Evidence) []string {
	span := "-"
	if ev.Locator != nil {
		span = fmt.Sprintf("%d-%d", ev.Locator.StartChar, ev.Locator.EndChar)
	}
	return []string{ev.ID, string(ev.Kind), span, truncate(ev.Excerpt, 48)}
}

func runEvidenceShow(cmd *cobra.Command, args []string) error {
	if err := requireService("evidence", evidenceService != nil); err != nil {
		return err
	}
	ev, err := evidenceService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get evidence: %w", err)
	}
	if ledgerJSON {
		return printJSON(cmd, ev)
	}
	cmd.Println(renderTable([]string{"ID", "Kind", "Span", "Excerpt"}, [][]string{evidenceRow(ev)}))
	cmd.Printf("Snapshot: %s\n", ev.SnapshotID)
	return nil
}

func runEvidenceVerify(cmd *cobra.Command, args []string) error {
	if err := requireService("evidence", evidenceService != nil); err != nil {
		return err
	}
	issues, err := evidenceService.Verify(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to verify evidence: %w", err)
	}
	if ledgerJSON {
		if issues == nil {
			issues = []domain.EvidenceIssue{}
		}
		return printJSON(cmd, map[string]any{"evidence_id": args[0], "valid": len(issues) == 0, "issues": issues})
	}
	if len(issues) == 0 {
		cmd.Println(successStyle.Render("Evidence " + args[0] + " is consistent with its snapshot."))
		return nil
	}
	cmd.Println(errorStyle.Render(fmt.Sprintf("Evidence %s has %d issue(s):", args[0], len(issues))))
	for _, issue := range issues {
		cmd.Printf("  %s: %s\n", issue.Code, issue.Message)
	}
	return fmt.Errorf("evidence %s failed verification: %w", args[0], domain.ErrInvalidState)
}
