package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// GetListingInput is the input schema for the get_listing tool.
type GetListingInput struct {
	ListingID  string `json:"listing_id" jsonschema:"the listing UUID"`
	SnapshotID string `json:"snapshot_id,omitempty" jsonschema:"project the listing as of this snapshot's capture time"`
	AsOf       string `json:"as_of,omitempty" jsonschema:"project the listing as of this RFC 3339 instant"`
}

// HistoryInput is the input schema for the listing_history tool.
type HistoryInput struct {
	ListingID string `json:"listing_id" jsonschema:"the listing UUID"`
}

// HistoryOutput is the output schema for the listing_history tool.
type HistoryOutput struct {
	ListingID string         `json:"listing_id"`
	Changes   []ChangeOutput `json:"changes"`
	Count     int            `json:"count"`
}

// CompareInput is the input schema for the compare_listings tool.
type CompareInput struct {
	LeftID          string `json:"listing_id_left" jsonschema:"UUID of the first listing"`
	RightID         string `json:"listing_id_right" jsonschema:"UUID of the second listing"`
	LeftSnapshotID  string `json:"snapshot_id_left,omitempty" jsonschema:"compare the first listing as of this snapshot"`
	RightSnapshotID string `json:"snapshot_id_right,omitempty" jsonschema:"compare the second listing as of this snapshot"`
}

// CompareRowOutput is one field of a comparison.
type CompareRowOutput struct {
	Field     string `json:"field"`
	Left      any    `json:"left"`
	Right     any    `json:"right"`
	Different bool   `json:"different"`
}

// CompareOutput is the output schema for the compare_listings tool.
type CompareOutput struct {
	LeftID    string             `json:"listing_id_left"`
	RightID   string             `json:"listing_id_right"`
	Rows      []CompareRowOutput `json:"rows"`
	Different []string           `json:"different"`
}

// NearMissInput is the input schema for the near_miss tool.
type NearMissInput struct {
	SearchSpecID string  `json:"search_spec_id" jsonschema:"the search spec UUID"`
	Threshold    float64 `json:"threshold" jsonschema:"largest fractional overshoot to report, between 0 and 1"`
}

// NearMissResult is one near-miss listing.
type NearMissResult struct {
	ListingID  string  `json:"listing_id"`
	Title      string  `json:"title"`
	Constraint string  `json:"constraint"`
	Field      string  `json:"field"`
	Value      any     `json:"value"`
	Overshoot  float64 `json:"overshoot"`
	Reason     string  `json:"reason"`
}

// NearMissOutput is the output schema for the near_miss tool.
type NearMissOutput struct {
	Results []NearMissResult `json:"results"`
	Count   int              `json:"count"`
}

// EvidenceInput is the input schema for the evidence tools.
type EvidenceInput struct {
	EvidenceID string `json:"evidence_id" jsonschema:"the evidence UUID"`
}

// IssueOutput is one verification problem.
type IssueOutput struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VerifyOutput is the output schema for the verify_evidence tool.
type VerifyOutput struct {
	EvidenceID string        `json:"evidence_id"`
	Valid      bool          `json:"valid"`
	Issues     []IssueOutput `json:"issues"`
}

// AlertsInput is the input schema for the list_alerts tool.
type AlertsInput struct {
	Status string `json:"status,omitempty" jsonschema:"open, acknowledged or dismissed (default open)"`
}

// AlertOutput is one alert.
type AlertOutput struct {
	AlertID   string `json:"alert_id"`
	ListingID string `json:"listing_id"`
	ChangeID  string `json:"listing_change_id"`
	FieldPath string `json:"field_path,omitempty"`
	Status    string `json:"status"`
}

// AlertsOutput is the output schema for the list_alerts tool.
type AlertsOutput struct {
	Alerts []AlertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_listing",
		Description: "Get a listing with every field's value and the evidence supporting it",
	}, s.handleGetListing)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "listing_history",
		Description: "List the field changes of a listing in the order they took effect",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_listings",
		Description: "Compare two listings field by field",
	}, s.handleCompare)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "near_miss",
		Description: "Find listings that miss exactly one numeric constraint of a search spec by a small margin",
	}, s.handleNearMiss)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_evidence",
		Description: "Get a citation and the snapshot excerpt it points at",
	}, s.handleGetEvidence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "verify_evidence",
		Description: "Check that a citation still resolves against its snapshot",
	}, s.handleVerifyEvidence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_alerts",
		Description: "List change alerts by status",
	}, s.handleListAlerts)
}

// handleGetListing handles the get_listing tool invocation.
func (s *Server) handleGetListing(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetListingInput,
) (*mcp.CallToolResult, ListingOutput, error) {
	var (
		listing *domain.Listing
		err     error
	)
	switch {
	case input.AsOf != "" && input.SnapshotID != "":
		return nil, ListingOutput{}, fmt.Errorf("snapshot_id and as_of are exclusive: %w", domain.ErrInvalidArgument)
	case input.AsOf != "":
		at, perr := time.Parse(time.RFC3339Nano, input.AsOf)
		if perr != nil {
			return nil, ListingOutput{}, fmt.Errorf("as_of %q is not RFC 3339: %w", input.AsOf, domain.ErrInvalidArgument)
		}
		listing, err = s.ports.Listings.GetAsOf(ctx, input.ListingID, at)
	default:
		listing, err = s.ports.Listings.Get(ctx, input.ListingID, input.SnapshotID)
	}
	if err != nil {
		return nil, ListingOutput{}, err
	}
	return nil, listingOutput(listing), nil
}

// handleHistory handles the listing_history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	changes, err := s.ports.Listings.History(ctx, input.ListingID)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	output := HistoryOutput{
		ListingID: input.ListingID,
		Changes:   make([]ChangeOutput, len(changes)),
		Count:     len(changes),
	}
	for i := range changes {
		output.Changes[i] = changeOutput(&changes[i])
	}
	return nil, output, nil
}

// handleCompare handles the compare_listings tool invocation.
func (s *Server) handleCompare(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompareInput,
) (*mcp.CallToolResult, CompareOutput, error) {
	if s.ports.Compare == nil {
		return nil, CompareOutput{}, fmt.Errorf("compare_listings: %w", domain.ErrNotImplemented)
	}
	cmp, err := s.ports.Compare.Compare(ctx, driving.CompareRequest{
		LeftID:          input.LeftID,
		RightID:         input.RightID,
		LeftSnapshotID:  input.LeftSnapshotID,
		RightSnapshotID: input.RightSnapshotID,
	})
	if err != nil {
		return nil, CompareOutput{}, err
	}

	output := CompareOutput{
		LeftID:    cmp.LeftID,
		RightID:   cmp.RightID,
		Rows:      make([]CompareRowOutput, len(cmp.Fields)),
		Different: cmp.DifferentFields(),
	}
	for i, row := range cmp.Fields {
		out := CompareRowOutput{Field: row.Field, Different: row.Different}
		if row.Left != nil {
			out.Left = row.Left.Value.Interface()
		}
		if row.Right != nil {
			out.Right = row.Right.Value.Interface()
		}
		output.Rows[i] = out
	}
	return nil, output, nil
}

// handleNearMiss handles the near_miss tool invocation.
func (s *Server) handleNearMiss(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NearMissInput,
) (*mcp.CallToolResult, NearMissOutput, error) {
	if s.ports.NearMiss == nil {
		return nil, NearMissOutput{}, fmt.Errorf("near_miss: %w", domain.ErrNotImplemented)
	}
	results, err := s.ports.NearMiss.Find(ctx, input.SearchSpecID, input.Threshold)
	if err != nil {
		return nil, NearMissOutput{}, err
	}

	output := NearMissOutput{
		Results: make([]NearMissResult, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		overshoot, _ := r.Overshoot.Round(6).Float64()
		output.Results[i] = NearMissResult{
			ListingID:  r.ListingID,
			Title:      r.Title,
			Constraint: r.Constraint,
			Field:      r.FieldName,
			Value:      r.Field.Value.Interface(),
			Overshoot:  overshoot,
			Reason:     r.Reason,
		}
	}
	return nil, output, nil
}

// handleGetEvidence handles the get_evidence tool invocation.
func (s *Server) handleGetEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvidenceInput,
) (*mcp.CallToolResult, EvidenceOutput, error) {
	if s.ports.Evidence == nil {
		return nil, EvidenceOutput{}, fmt.Errorf("get_evidence: %w", domain.ErrNotImplemented)
	}
	ev, err := s.ports.Evidence.Get(ctx, input.EvidenceID)
	if err != nil {
		return nil, EvidenceOutput{}, err
	}
	return nil, evidenceOutput(ev), nil
}

// handleVerifyEvidence handles the verify_evidence tool invocation.
func (s *Server) handleVerifyEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvidenceInput,
) (*mcp.CallToolResult, VerifyOutput, error) {
	if s.ports.Evidence == nil {
		return nil, VerifyOutput{}, fmt.Errorf("verify_evidence: %w", domain.ErrNotImplemented)
	}
	issues, err := s.ports.Evidence.Verify(ctx, input.EvidenceID)
	if err != nil {
		return nil, VerifyOutput{}, err
	}

	output := VerifyOutput{
		EvidenceID: input.EvidenceID,
		Valid:      len(issues) == 0,
		Issues:     make([]IssueOutput, len(issues)),
	}
	for i, issue := range issues {
		output.Issues[i] = IssueOutput{Code: issue.Code, Message: issue.Message}
	}
	return nil, output, nil
}

// handleListAlerts handles the list_alerts tool invocation.
func (s *Server) handleListAlerts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AlertsInput,
) (*mcp.CallToolResult, AlertsOutput, error) {
	if s.ports.Alerts == nil {
		return nil, AlertsOutput{}, fmt.Errorf("list_alerts: %w", domain.ErrNotImplemented)
	}
	status := domain.AlertOpen
	if input.Status != "" {
		parsed, err := domain.ParseAlertStatus(input.Status)
		if err != nil {
			return nil, AlertsOutput{}, err
		}
		status = parsed
	}
	alerts, err := s.ports.Alerts.List(ctx, status)
	if err != nil {
		return nil, AlertsOutput{}, err
	}

	output := AlertsOutput{
		Alerts: make([]AlertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		output.Alerts[i] = AlertOutput{
			AlertID:   a.ID,
			ListingID: a.ListingID,
			ChangeID:  a.ListingChangeID,
			FieldPath: a.FieldPath,
			Status:    a.Status.String(),
		}
	}
	return nil, output, nil
}
