package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

var (
	alertJSON   bool
	alertStatus string
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Manage listing change alerts",
	Long: `Alerts are raised when a watched listing field changes. An alert starts
open and is either acknowledged or dismissed; both are final.`,
}

var alertListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Args:  cobra.NoArgs,
	RunE:  runAlertList,
}

var alertAckCmd = &cobra.Command{
	Use:   "ack [alert-id]",
	Short: "Acknowledge an open alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlertTransition(cmd, args[0], domain.AlertAcknowledged)
	},
}

var alertDismissCmd = &cobra.Command{
	Use:   "dismiss [alert-id]",
	Short: "Dismiss an open alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlertTransition(cmd, args[0], domain.AlertDismissed)
	},
}

func init() {
	alertCmd.PersistentFlags().BoolVar(&alertJSON, "json", false, "output as JSON")
	alertListCmd.Flags().StringVarP(&alertStatus, "status", "s", "open", "open, acknowledged, dismissed or all")
	alertCmd.AddCommand(alertListCmd)
	alertCmd.AddCommand(alertAckCmd)
	alertCmd.AddCommand(alertDismissCmd)
	rootCmd.AddCommand(alertCmd)
}

func runAlertList(cmd *cobra.Command, _ []string) error {
	if err := requireService("alert", alertService != nil); err != nil {
		return err
	}
	var status domain.AlertStatus
	if alertStatus != "all" && alertStatus != "" {
		parsed, err := domain.ParseAlertStatus(alertStatus)
		if err != nil {
			return err
		}
		status = parsed
	}

	alerts, err := alertService.List(cmd.Context(), status)
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}
	if alertJSON {
		return printJSON(cmd, alerts)
	}
	if len(alerts) == 0 {
		cmd.Println("No alerts.")
		return nil
	}

	rows := make([][]string, len(alerts))
	for i := range alerts {
		a := &alerts[i]
		rows[i] = []string{a.ID, a.ListingID, a.FieldPath, styleStatus(a.Status), formatTime(a.CreatedAt)}
	}
	cmd.Println(renderTable([]string{"ID", "Listing", "Field", "Status", "Raised"}, rows))
	return nil
}

func runAlertTransition(cmd *cobra.Command, id string, next domain.AlertStatus) error {
	if err := requireService("alert", alertService != nil); err != nil {
		return err
	}
	alert, err := alertService.Transition(cmd.Context(), id, next)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if alertJSON {
		return printJSON(cmd, alert)
	}
	cmd.Printf("Alert %s is now %s\n", alert.ID, styleStatus(alert.Status))
	return nil
}

func styleStatus(s domain.AlertStatus) string {
	switch s {
	case domain.AlertOpen:
		return warningStyle.Render(s.String())
	case domain.AlertAcknowledged:
		return successStyle.Render(s.String())
	default:
		return mutedStyle.Render(s.String())
	}
}
