package domain

import "github.com/shopspring/decimal"

// TicketPricing is the per-ticket line of a pricing result. Effective is
// the price after discount, clamped at zero.
type TicketPricing struct {
	CategoryID string
	Price      decimal.Decimal
	Discount   decimal.Decimal
	Effective  decimal.Decimal
}

// PricingResult is the full monetary breakdown of an order:
// Total = Subtotal - Discount + Fee.
type PricingResult struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Fee      decimal.Decimal
	Total    decimal.Decimal
	Lines    []TicketPricing
}
