package domain

import "github.com/shopspring/decimal"

// CommissionType selects how an affiliate commission is computed.
type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

// AffiliateContext identifies the referral partner credited for a sale.
// The commission is bookkeeping for later payout reconciliation; it
// never changes what the participant pays.
type AffiliateContext struct {
	AffiliateID     string
	CommissionType  CommissionType
	CommissionValue decimal.Decimal
}
