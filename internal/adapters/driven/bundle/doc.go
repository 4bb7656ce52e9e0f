// Package bundle decodes the YAML import bundles written by the extraction
// pipeline into domain.Bundle values.
//
// A bundle looks like:
//
//	schema_version: v1
//	snapshots:
//	  - key: alpha-1
//	    url: https://example.com/alpha
//	    captured_at: 2026-03-02T09:00:00Z
//	    text: "Rent: $1,800"
//	    citations:
//	      - key: a1-price
//	        excerpt: "$1,800"
//	listings:
//	  - key: alpha
//	    title: Alpha Flat
//	    neighborhood: mission
//	    snapshot: alpha-1
//	changes:
//	  - listing: alpha
//	    field: price
//	    value: 1800
//	    citations: [a1-price]
//	search_specs:
//	  - name: budget
//	    hard:
//	      - {field: price, op: max, bound: 1800}
//
// Numbers are parsed from their literal text so 2000.10 stays exact.
package bundle
