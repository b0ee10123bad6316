package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Engine computes order totals. It is pure: no I/O, no clock, same
// inputs always produce the same result.
type Engine struct {
	serviceFee decimal.Decimal
}

// NewEngine returns an engine charging the given flat service fee on
// orders that are not entirely free.
func NewEngine(serviceFee decimal.Decimal) Engine {
	if serviceFee.IsNegative() {
		serviceFee = decimal.Zero
	}
	return Engine{serviceFee: serviceFee}
}

// ComputeOrderTotals prices the cart. Per ticket the discount is the
// club's base percentage plus, when the cart holds at least the
// progressive threshold of tickets, the progressive percentage; the
// discount is clamped so no effective price goes negative. The flat
// service fee applies once per order unless every ticket is free; a
// mixed free/paid order counts as paid.
func (e Engine) ComputeOrderTotals(tickets []domain.SelectedTicket, club *domain.DiscountClubContext) domain.PricingResult {
	res := domain.PricingResult{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Fee:      decimal.Zero,
		Total:    decimal.Zero,
		Lines:    make([]domain.TicketPricing, 0, len(tickets)),
	}

	percent := decimal.Zero
	if club != nil {
		percent = club.BasePercent
		if club.ProgressiveThreshold > 0 && len(tickets) >= club.ProgressiveThreshold {
			percent = percent.Add(club.ProgressivePercent)
		}
	}

	for _, t := range tickets {
		price := t.UnitPrice
		if price.IsNegative() {
			// Catalog validation should have rejected this; never let it
			// push a total below zero here.
			price = decimal.Zero
		}

		discount := decimal.Zero
		if percent.IsPositive() {
			discount = price.Mul(percent).Div(hundred)
			if discount.GreaterThan(price) {
				discount = price
			}
		}

		res.Subtotal = res.Subtotal.Add(price)
		res.Discount = res.Discount.Add(discount)
		res.Lines = append(res.Lines, domain.TicketPricing{
			CategoryID: t.CategoryID,
			Price:      price,
			Discount:   discount,
			Effective:  price.Sub(discount),
		})
	}

	if !entirelyFree(tickets) {
		res.Fee = e.serviceFee
	}
	res.Total = res.Subtotal.Sub(res.Discount).Add(res.Fee)
	return res
}

// CommissionFor computes the affiliate commission recorded against one
// ticket's effective price. It is bookkeeping only and never changes
// the participant's total.
func (e Engine) CommissionFor(aff *domain.AffiliateContext, effectivePrice decimal.Decimal) decimal.Decimal {
	if aff == nil {
		return decimal.Zero
	}
	switch aff.CommissionType {
	case domain.CommissionPercentage:
		return effectivePrice.Mul(aff.CommissionValue).Div(hundred)
	case domain.CommissionFixed:
		return aff.CommissionValue
	default:
		return decimal.Zero
	}
}

func entirelyFree(tickets []domain.SelectedTicket) bool {
	for _, t := range tickets {
		if !t.Free() {
			return false
		}
	}
	return true
}
