// Package scan turns raw barcode input into catalog references: GS1-128
// decoding, batch/lot resolution, and the keystroke buffer that feeds
// them from wedge scanners.
package scan

import "strings"

const (
	aiGTIN = "01"
	aiLot  = "10"

	gtinLength = 14
	// A GTIN element is AI(2)+GTIN(14); anything not longer than that
	// cannot carry a trailing lot element.
	gtinElementLength = len(aiGTIN) + gtinLength
)

// GS1 holds the fields extracted from a structured GS1-128 scan.
type GS1 struct {
	GTIN string
	Lot  string
}

// DecodeGS1 attempts a structured decode of a scanned string: AI "01"
// followed by a 14-digit GTIN, then a search for AI "10" whose value
// runs to the end of the code. Returns false when the scan does not
// look like a GS1-128 element string at all.
func DecodeGS1(raw string) (GS1, bool) {
	if !strings.HasPrefix(raw, aiGTIN) || len(raw) <= gtinElementLength {
		return GS1{}, false
	}

	decoded := GS1{GTIN: raw[len(aiGTIN):gtinElementLength]}

	// Date AIs (11/13/15/17) may sit between the GTIN and the lot, so
	// scan forward for the lot AI rather than assuming a fixed offset.
	rest := raw[gtinElementLength:]
	if i := strings.Index(rest, aiLot); i >= 0 && i+len(aiLot) < len(rest) {
		decoded.Lot = rest[i+len(aiLot):]
	}

	return decoded, true
}
