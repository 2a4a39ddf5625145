package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testProduct(name string) Product {
	return Product{ID: uuid.New(), Name: name, UnitPrice: decimal.RequireFromString("10.00")}
}

func TestCartSessionMergesByProductAndLot(t *testing.T) {
	product := testProduct("Blue Dream 3.5g")
	batchA := &Batch{ID: uuid.New(), ProductID: product.ID, LotCode: "LOT-A"}
	batchB := &Batch{ID: uuid.New(), ProductID: product.ID, LotCode: "LOT-B"}

	sess := NewCartSession(uuid.New(), uuid.New())
	sess = sess.WithLine(CartLine{Product: product, Quantity: 1, Batch: batchA})
	sess = sess.WithLine(CartLine{Product: product, Quantity: 1, Batch: batchA})
	sess = sess.WithLine(CartLine{Product: product, Quantity: 1, Batch: batchB})

	if len(sess.Lines) != 2 {
		t.Fatalf("got %d lines, want 2 (same lot merges, different lot stays distinct)", len(sess.Lines))
	}
	if sess.Lines[0].Quantity != 2 {
		t.Errorf("repeated scan of the same lot: quantity = %d, want 2", sess.Lines[0].Quantity)
	}
	if sess.Lines[1].Quantity != 1 {
		t.Errorf("other lot quantity = %d, want 1", sess.Lines[1].Quantity)
	}
}

func TestCartSessionLotlessLinesShareAKey(t *testing.T) {
	product := testProduct("Gummies")

	sess := NewCartSession(uuid.New(), uuid.New())
	sess = sess.WithLine(CartLine{Product: product, Quantity: 2})
	sess = sess.WithLine(CartLine{Product: product, Quantity: 3})

	if len(sess.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(sess.Lines))
	}
	if sess.Lines[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", sess.Lines[0].Quantity)
	}
}

func TestCartSessionWithLineIgnoresNonPositiveQuantity(t *testing.T) {
	sess := NewCartSession(uuid.New(), uuid.New())
	sess = sess.WithLine(CartLine{Product: testProduct("x"), Quantity: 0})
	sess = sess.WithLine(CartLine{Product: testProduct("y"), Quantity: -3})

	if len(sess.Lines) != 0 {
		t.Errorf("got %d lines, want 0", len(sess.Lines))
	}
}

func TestCartSessionWithQuantityZeroRemovesLine(t *testing.T) {
	product := testProduct("Pre-Roll")
	sess := NewCartSession(uuid.New(), uuid.New()).
		WithLine(CartLine{Product: product, Quantity: 2})

	key := sess.Lines[0].LineKey()
	sess = sess.WithQuantity(key, 0)

	if len(sess.Lines) != 0 {
		t.Errorf("setting quantity to zero left %d lines", len(sess.Lines))
	}

	// Unknown keys are a no-op, not a panic.
	sess = sess.WithQuantity("missing:none", 5)
	if len(sess.Lines) != 0 {
		t.Errorf("unknown key created a line")
	}
}

func TestCartSessionLineDiscountClamps(t *testing.T) {
	product := testProduct("Vape")
	sess := NewCartSession(uuid.New(), uuid.New()).
		WithLine(CartLine{Product: product, Quantity: 1})
	key := sess.Lines[0].LineKey()

	sess = sess.WithLineDiscount(key, decimal.NewFromInt(150))
	if !sess.Lines[0].DiscountPct.Equal(decimal.NewFromInt(100)) {
		t.Errorf("discount = %s, want clamp to 100", sess.Lines[0].DiscountPct)
	}

	sess = sess.WithLineDiscount(key, decimal.NewFromInt(-5))
	if !sess.Lines[0].DiscountPct.Equal(decimal.Zero) {
		t.Errorf("discount = %s, want clamp to 0", sess.Lines[0].DiscountPct)
	}
}

func TestCartSessionWithDiscount(t *testing.T) {
	sess := NewCartSession(uuid.New(), uuid.New())

	sess = sess.WithDiscount(OrderDiscount{Kind: DiscountFixed, Value: decimal.NewFromInt(-10)})
	if !sess.Discount.Value.Equal(decimal.Zero) {
		t.Errorf("negative discount value = %s, want 0", sess.Discount.Value)
	}

	sess = sess.WithDiscount(OrderDiscount{Kind: "bogus", Value: decimal.NewFromInt(10)})
	if sess.Discount.Kind != DiscountNone {
		t.Errorf("unknown kind = %q, want none", sess.Discount.Kind)
	}
}

func TestCartSessionMutationsDoNotAliasState(t *testing.T) {
	product := testProduct("Tincture")
	base := NewCartSession(uuid.New(), uuid.New()).
		WithLine(CartLine{Product: product, Quantity: 1})

	key := base.Lines[0].LineKey()
	bumped := base.WithQuantity(key, 9)

	if base.Lines[0].Quantity != 1 {
		t.Errorf("mutation leaked into the original session: quantity = %d", base.Lines[0].Quantity)
	}
	if bumped.Lines[0].Quantity != 9 {
		t.Errorf("derived session quantity = %d, want 9", bumped.Lines[0].Quantity)
	}
}

func TestCartSessionCleared(t *testing.T) {
	customerID := uuid.New()
	sess := NewCartSession(uuid.New(), uuid.New()).
		WithLine(CartLine{Product: testProduct("a"), Quantity: 1}).
		WithDiscount(OrderDiscount{Kind: DiscountPercentage, Value: decimal.NewFromInt(10)}).
		WithCustomer(&customerID)

	cleared := sess.Cleared()

	if len(cleared.Lines) != 0 {
		t.Errorf("cleared session kept %d lines", len(cleared.Lines))
	}
	if cleared.Discount.Kind != DiscountNone {
		t.Errorf("cleared session kept discount %q", cleared.Discount.Kind)
	}
	if cleared.CustomerID != nil {
		t.Errorf("cleared session kept customer")
	}
	if cleared.ID != sess.ID {
		t.Errorf("clearing changed the session identity")
	}
}

func TestCartSessionRoundTripsThroughJSON(t *testing.T) {
	product := testProduct("Hash 1g")
	batch := &Batch{ID: uuid.New(), ProductID: product.ID, LotCode: "L-9"}
	sess := NewCartSession(uuid.New(), uuid.New()).
		WithLine(CartLine{Product: product, Quantity: 3, Batch: batch}).
		WithDiscount(OrderDiscount{Kind: DiscountPercentage, Value: decimal.NewFromInt(5)})

	data, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored CartSession
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.ID != sess.ID || len(restored.Lines) != 1 {
		t.Fatalf("round trip lost session state")
	}
	if restored.Lines[0].LineKey() != sess.Lines[0].LineKey() {
		t.Errorf("round trip changed the line key")
	}
	if !restored.Discount.Value.Equal(sess.Discount.Value) {
		t.Errorf("round trip changed the discount")
	}
}
