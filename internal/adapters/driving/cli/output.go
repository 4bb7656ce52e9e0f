package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// errNotConfigured is returned when a command's service was not wired.
var errNotConfigured = errors.New("service not configured")

func requireService(name string, ok bool) error {
	if !ok {
		return fmt.Errorf("%s %w", name, errNotConfigured)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// formatValue renders a field value, with nulls shown muted.
func formatValue(v domain.Value) string {
	if v.IsNull() {
		return mutedStyle.Render("null")
	}
	return v.String()
}

// formatProvenance summarises a field's evidence.
func formatProvenance(f domain.Field) string {
	if f.MissingEvidence || len(f.Evidence) == 0 {
		return warningStyle.Render("missing evidence")
	}
	first := f.Evidence[0]
	summary := fmt.Sprintf("%q", truncate(first.Excerpt, 40))
	if extra := len(f.Evidence) - 1; extra > 0 {
		summary += mutedStyle.Render(fmt.Sprintf(" +%d", extra))
	}
	return summary
}

func parseAsOf(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of %q is not RFC 3339: %w", s, domain.ErrInvalidArgument)
	}
	return t, nil
}
