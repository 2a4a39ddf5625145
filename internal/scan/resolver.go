package scan

import (
	"strings"

	"canopy-pos/internal/domain"
)

// ResolveBatch picks the batch a scanned string refers to, or nil when
// nothing matches. The strategies form a strict priority chain, each
// attempted only when the previous produced no match:
//
//  1. structured GS1-128 decode, then lot-code match
//  2. GTIN match against case/unit codes
//  3. single-batch fallback
//
// Lot and GTIN comparison is deliberately tolerant: exact equality or
// containment in either direction, because scanners disagree about
// check-digit and zero padding. Ties go to the first-listed batch.
func ResolveBatch(raw string, batches []domain.Batch) *domain.Batch {
	if len(batches) == 0 {
		return nil
	}

	decoded, structured := DecodeGS1(raw)

	if structured && decoded.Lot != "" {
		for i := range batches {
			if tolerantMatch(batches[i].LotCode, decoded.Lot) {
				return &batches[i]
			}
		}
	}

	gtin := raw
	if structured {
		gtin = decoded.GTIN
	}
	for i := range batches {
		if tolerantMatch(batches[i].CaseGTIN, gtin) || tolerantMatch(batches[i].UnitGTIN, gtin) {
			return &batches[i]
		}
	}

	// With a single batch there is nothing to disambiguate, so an
	// unrecognized scan still lands on it rather than forcing a
	// pointless manual selection.
	if len(batches) == 1 {
		return &batches[0]
	}

	return nil
}

// tolerantMatch reports whether two codes refer to the same thing:
// equal, or one contained in the other. Empty codes never match.
func tolerantMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
