package scan

import "testing"

func TestDecodeGS1(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantOK   bool
		wantGTIN string
		wantLot  string
	}{
		{
			name:     "gtin followed by lot",
			raw:      "010001234567890510ABC123",
			wantOK:   true,
			wantGTIN: "00012345678905",
			wantLot:  "ABC123",
		},
		{
			name:     "lot ai found past intervening digits",
			raw:      "0100012345678905102110ABC123",
			wantOK:   true,
			wantGTIN: "00012345678905",
			wantLot:  "2110ABC123",
		},
		{
			name:     "gtin only without lot element",
			raw:      "01000123456789059999",
			wantOK:   true,
			wantGTIN: "00012345678905",
			wantLot:  "",
		},
		{
			name:   "too short for a trailing element",
			raw:    "0100012345678905",
			wantOK: false,
		},
		{
			name:   "missing gtin ai prefix",
			raw:    "990001234567890510ABC123",
			wantOK: false,
		},
		{
			name:   "plain upc",
			raw:    "062639347536",
			wantOK: false,
		},
		{
			name:   "empty scan",
			raw:    "",
			wantOK: false,
		},
		{
			name:     "lot ai at the very end carries no value",
			raw:      "010001234567890510",
			wantOK:   true,
			wantGTIN: "00012345678905",
			wantLot:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, ok := DecodeGS1(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("DecodeGS1(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if decoded.GTIN != tt.wantGTIN {
				t.Errorf("GTIN = %q, want %q", decoded.GTIN, tt.wantGTIN)
			}
			if decoded.Lot != tt.wantLot {
				t.Errorf("Lot = %q, want %q", decoded.Lot, tt.wantLot)
			}
		})
	}
}
