package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountClub is an organizer-configured group discount. BasePercent
// applies to every ticket; ProgressivePercent is added on top when the
// order holds at least ProgressiveThreshold tickets. Allocation caps how
// many registrations may use the club.
type DiscountClub struct {
	ID                   string
	EventID              string
	Name                 string
	BasePercent          decimal.Decimal
	ProgressiveThreshold int
	ProgressivePercent   decimal.Decimal
	Allocation           int
	Used                 int
	Deadline             time.Time
}

// Remaining returns how many registrations may still use the club.
func (c DiscountClub) Remaining() int {
	if left := c.Allocation - c.Used; left > 0 {
		return left
	}
	return 0
}

// Eligible reports whether the club may still grant discounts. Both
// conditions are re-checked at submission, not only at cart load,
// because concurrent buyers can exhaust the allocation in between.
func (c DiscountClub) Eligible(now time.Time) bool {
	return c.Remaining() > 0 && !now.After(c.Deadline)
}

// DiscountClubContext is the slice of club state the pricing engine
// needs. It is captured at cart load and revalidated before submit.
type DiscountClubContext struct {
	ClubID               string
	BasePercent          decimal.Decimal
	ProgressiveThreshold int
	ProgressivePercent   decimal.Decimal
}
