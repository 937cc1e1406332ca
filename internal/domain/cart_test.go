package domain

import "testing"

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil)
	if got.TotalItems != 0 || got.TotalAmountCents != 0 {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestComputeTotals(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", Quantity: 2, UnitPriceCents: 2500},
		{ProductID: "p2", Quantity: 3, UnitPriceCents: 1000, DiscountPercent: 20},
	}
	got := ComputeTotals(items)
	if got.TotalItems != 5 {
		t.Fatalf("expected 5 items, got %d", got.TotalItems)
	}
	// 2*2500 + 3*1000*0.8 = 5000 + 2400
	if got.TotalAmountCents != 7400 {
		t.Fatalf("expected 7400 cents, got %d", got.TotalAmountCents)
	}
}

func TestComputeTotalsFullDiscount(t *testing.T) {
	got := ComputeTotals([]LineItem{{Quantity: 4, UnitPriceCents: 999, DiscountPercent: 100}})
	if got.TotalAmountCents != 0 {
		t.Fatalf("expected free line to contribute 0, got %d", got.TotalAmountCents)
	}
	if got.TotalItems != 4 {
		t.Fatalf("expected 4 items, got %d", got.TotalItems)
	}
}
