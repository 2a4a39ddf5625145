package scan

import (
	"testing"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
)

func TestResolveBatch(t *testing.T) {
	lotA := domain.Batch{ID: uuid.New(), LotCode: "10ABC123", UnitGTIN: "00012345678905"}
	lotB := domain.Batch{ID: uuid.New(), LotCode: "XYZ-777", UnitGTIN: "00099999999990"}
	caseOnly := domain.Batch{ID: uuid.New(), LotCode: "CASE-1", CaseGTIN: "10612345678904"}

	tests := []struct {
		name    string
		raw     string
		batches []domain.Batch
		want    *domain.Batch
	}{
		{
			name:    "structured scan matches lot by containment",
			raw:     "0100012345678905102110ABC123",
			batches: []domain.Batch{lotB, lotA},
			want:    &lotA,
		},
		{
			name:    "structured scan with exact lot",
			raw:     "010009999999999010XYZ-777",
			batches: []domain.Batch{lotA, lotB},
			want:    &lotB,
		},
		{
			name:    "lot miss falls through to gtin",
			raw:     "010009999999999010UNKNOWN",
			batches: []domain.Batch{lotA, lotB},
			want:    &lotB,
		},
		{
			name:    "raw upc matches unit gtin by containment",
			raw:     "012345678905",
			batches: []domain.Batch{lotB, lotA},
			want:    &lotA,
		},
		{
			name:    "case gtin match",
			raw:     "10612345678904",
			batches: []domain.Batch{lotA, caseOnly},
			want:    &caseOnly,
		},
		{
			name:    "single batch fallback on unrecognized scan",
			raw:     "garbage",
			batches: []domain.Batch{lotB},
			want:    &lotB,
		},
		{
			name:    "no fallback with multiple candidates",
			raw:     "garbage",
			batches: []domain.Batch{lotA, lotB},
			want:    nil,
		},
		{
			name:    "no batches",
			raw:     "0100012345678905102110ABC123",
			batches: nil,
			want:    nil,
		},
		{
			name:    "first listed batch wins a tie",
			raw:     "012345678905",
			batches: []domain.Batch{lotA, {ID: uuid.New(), LotCode: "DUP", UnitGTIN: "00012345678905"}},
			want:    &lotA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBatch(tt.raw, tt.batches)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ResolveBatch(%q) = %v, want nil", tt.raw, got.ID)
				}
				return
			}
			if got == nil {
				t.Fatalf("ResolveBatch(%q) = nil, want %v", tt.raw, tt.want.ID)
			}
			if got.ID != tt.want.ID {
				t.Errorf("ResolveBatch(%q) = %v, want %v", tt.raw, got.ID, tt.want.ID)
			}
		})
	}
}

func TestTolerantMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"ABC", "ABC", true},
		{"00012345678905", "012345678905", true},
		{"012345678905", "00012345678905", true},
		{"ABC", "XYZ", false},
		{"", "ABC", false},
		{"ABC", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		if got := tolerantMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("tolerantMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
