package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is the ledger entry created for a paid registration. Amount is
// the effective ticket price plus any service fee carried by this
// registration; Commission is recorded only when an affiliate referred
// the sale.
type Payment struct {
	ID             string
	RegistrationID string
	Amount         decimal.Decimal
	Discount       decimal.Decimal
	Method         string
	Status         PaymentStatus
	AffiliateID    string
	Commission     decimal.Decimal
	CreatedAt      time.Time
}
