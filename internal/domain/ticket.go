package domain

import "github.com/shopspring/decimal"

// TicketCategory is a purchasable unit within a batch ("10km", "21km").
// Remaining is nil (or zero at creation) for unlimited inventory.
type TicketCategory struct {
	ID         string
	BatchID    string
	Name       string
	Price      decimal.Decimal
	IsFree     bool
	HasKit     bool
	KitItems   []string
	ShirtSizes []string
	Remaining  *int
}

// TicketBatch is the catalog view the checkout validates a cart against.
type TicketBatch struct {
	Batch      Batch
	Categories []TicketCategory
}

// Category returns the category with the given id, if present.
func (tb TicketBatch) Category(id string) (TicketCategory, bool) {
	for _, c := range tb.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return TicketCategory{}, false
}

// SelectedTicket is one purchasable unit in a cart. A category bought in
// quantity N expands to N SelectedTickets, one per participant, so cart
// index and roster index always pair up.
type SelectedTicket struct {
	CategoryID   string
	CategoryName string
	UnitPrice    decimal.Decimal
	IsFree       bool
	HasKit       bool
	KitItems     []string
	ShirtSizes   []string
}

// Free reports whether this ticket costs nothing.
func (t SelectedTicket) Free() bool {
	return t.IsFree || !t.UnitPrice.IsPositive()
}
