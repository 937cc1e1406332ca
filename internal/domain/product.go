package domain

import "time"

type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category,omitempty"`
	PriceCents      int64     `json:"priceCents"`
	DiscountPercent int       `json:"discountPercent"`
	MaxQuantity     int       `json:"maxQuantity"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
