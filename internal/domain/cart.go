package domain

// LineItem is one cart line. ItemID is assigned by whichever authority owns
// the cart: the remote service in authenticated mode, a locally generated
// UUID in guest mode.
type LineItem struct {
	ItemID          string `json:"itemId"`
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unitPriceCents"`
	DiscountPercent int    `json:"discountPercent"`
	MaxQuantity     int    `json:"maxQuantity"`
	ImagePath       string `json:"imagePath,omitempty"`
}

// CartTotals is derived state, always recomputed from the line items via
// ComputeTotals and never stored on its own.
type CartTotals struct {
	TotalItems       int   `json:"totalItems"`
	TotalAmountCents int64 `json:"totalAmountCents"`
}

// ComputeTotals recomputes cart totals from scratch. Discount is applied per
// line in integer cents.
func ComputeTotals(items []LineItem) CartTotals {
	var t CartTotals
	for _, it := range items {
		t.TotalItems += it.Quantity
		t.TotalAmountCents += int64(it.Quantity) * it.UnitPriceCents * int64(100-it.DiscountPercent) / 100
	}
	return t
}
