// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// listing ledger. It lets AI assistants read listings, their history and the
// evidence behind every field.
package mcp

import "errors"

// ErrMissingListingService is returned when the listing service is not provided.
var ErrMissingListingService = errors.New("mcp: listing service is required")
