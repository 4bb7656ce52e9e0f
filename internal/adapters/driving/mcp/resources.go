package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for ledger resources.
	uriScheme = "listingtrail://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing listings.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "listings",
		Name:        "listings",
		Description: "All listings with their current titles and revisions",
		MIMEType:    "application/json",
	}, s.handleListingsResource)

	// Template for a single listing projection.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "listings/{listingId}",
		Name:        "listing",
		Description: "A listing's fields with the evidence behind each value",
		MIMEType:    "application/json",
	}, s.handleListingResource)

	// Template for snapshot text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "snapshots/{snapshotId}",
		Name:        "snapshot-text",
		Description: "The captured text of a page snapshot",
		MIMEType:    "text/plain",
	}, s.handleSnapshotResource)
}

// handleListingsResource returns a summary of every listing.
func (s *Server) handleListingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	listings, err := s.ports.Listings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}

	type listingInfo struct {
		ID           string `json:"listing_id"`
		Title        string `json:"title"`
		Neighborhood string `json:"neighborhood,omitempty"`
		Revision     int64  `json:"revision"`
	}

	infos := make([]listingInfo, len(listings))
	for i := range listings {
		infos[i] = listingInfo{
			ID:           listings[i].ID,
			Title:        listings[i].Title,
			Neighborhood: listings[i].Neighborhood,
			Revision:     listings[i].Revision,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleListingResource returns one listing projection.
func (s *Server) handleListingResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract listingId from URI: listingtrail://listings/{listingId}
	listingID := extractID(req.Params.URI, "listings/")
	if listingID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	listing, err := s.ports.Listings.Get(ctx, listingID, "")
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	return jsonResource(req.Params.URI, listingOutput(listing))
}

// handleSnapshotResource returns the text of a snapshot.
func (s *Server) handleSnapshotResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Snapshots == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract snapshotId from URI: listingtrail://snapshots/{snapshotId}
	snapshotID := extractID(req.Params.URI, "snapshots/")
	if snapshotID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snap, err := s.ports.Snapshots.Get(ctx, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     snap.Text,
		}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractID extracts the trailing id from a URI like listingtrail://<collection>{id}.
// Nested paths yield no id.
func extractID(uri, collection string) string {
	prefix := uriScheme + collection

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
