package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// NearMiss is a listing that fails exactly one numeric hard constraint by a
// fractional overshoot within the requested threshold.
type NearMiss struct {
	ListingID  string
	Title      string
	Reason     string
	Constraint string
	FieldName  string
	Field      Field
	Overshoot  decimal.Decimal
}

// reservedNearMissKeys are encoded by NearMiss itself and cannot be shadowed
// by the offending field's name.
var reservedNearMissKeys = map[string]struct{}{
	"listing_id": {}, "title": {}, "reason": {}, "constraint": {}, "field": {}, "overshoot": {},
}

// MarshalJSON emits the offending field under its own name so clients can
// render its provenance next to the reason.
func (n NearMiss) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"listing_id": n.ListingID,
		"title":      n.Title,
		"reason":     n.Reason,
		"constraint": n.Constraint,
		"field":      n.FieldName,
		"overshoot":  json.Number(n.Overshoot.Round(6).String()),
	}
	if _, reserved := reservedNearMissKeys[n.FieldName]; !reserved && n.FieldName != "" {
		out[n.FieldName] = n.Field.Normalize()
	}
	return json.Marshal(out)
}

// NearMissReason renders which constraint failed and by how much.
func NearMissReason(c *Constraint, actual decimal.Decimal, overshoot decimal.Decimal) string {
	bound, _ := c.Bound.AsNumber()
	direction := "over"
	if c.Op == OpMin {
		direction = "under"
	}
	return fmt.Sprintf("%s %s is %s %s %s by %s%%",
		c.Field, actual.String(), direction, c.Name, bound.String(),
		overshoot.Mul(decimal.NewFromInt(100)).StringFixed(1))
}

// SortNearMisses orders results closest-miss first, ties broken by
// listing id.
func SortNearMisses(results []NearMiss) {
	sort.SliceStable(results, func(i, j int) bool {
		if c := results[i].Overshoot.Cmp(results[j].Overshoot); c != 0 {
			return c < 0
		}
		return results[i].ListingID < results[j].ListingID
	})
}
