package entity

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// OrderRequest is the wire shape of a batch order. Listings and quantities
// accept three encodings: a single number, a comma-separated string
// ("1,2,15"), or a JSON array of numbers. Both fields must decode to
// sequences of equal length.
type OrderRequest struct {
	Listings     json.RawMessage `json:"listings"`
	Quantities   json.RawMessage `json:"quantities"`
	CreationDate *time.Time      `json:"creation_date"`
}

// Lines decodes and validates the request into ordered (listing, quantity)
// pairs. The pair order is the caller-supplied order; it determines which
// line fails first when stock is scarce.
func (r *OrderRequest) Lines() ([]LineRequest, error) {
	listings, err := decodeIntSeq(r.Listings)
	if err != nil {
		return nil, Validationf("listings: %v", err)
	}
	quantities, err := decodeIntSeq(r.Quantities)
	if err != nil {
		return nil, Validationf("quantities: %v", err)
	}

	if len(listings) == 0 {
		return nil, Validationf("order must have at least one listing")
	}
	if len(listings) != len(quantities) {
		return nil, Validationf("listings and quantities length mismatch (%d vs %d)", len(listings), len(quantities))
	}

	lines := make([]LineRequest, len(listings))
	for i := range listings {
		if quantities[i] <= 0 {
			return nil, Validationf("quantity must be positive, got %d", quantities[i])
		}
		lines[i] = LineRequest{ListingID: listings[i], Quantity: int(quantities[i])}
	}
	return lines, nil
}

// decodeIntSeq accepts a JSON number, a JSON array of numbers, or a JSON
// string of comma-separated integers.
func decodeIntSeq(raw json.RawMessage) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var single int64
	if err := json.Unmarshal(raw, &single); err == nil {
		return []int64{single}, nil
	}

	var many []int64
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errInvalidSeq
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errInvalidSeq
		}
		out = append(out, n)
	}
	return out, nil
}

var errInvalidSeq = errors.New("expected a number, an array of numbers, or a comma-separated string")
