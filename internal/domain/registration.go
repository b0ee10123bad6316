package domain

import "time"

type RegistrationStatus string

const (
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationPending   RegistrationStatus = "pending"
)

// WaiverAudit records how the liability waiver was accepted. Captured
// only when the participant accepted it.
type WaiverAudit struct {
	AcceptedAt  time.Time
	IP          string
	UserAgent   string
	DeviceClass string
}

// RegistrationRecord is the durable outcome of one participant's
// enrollment. Never mutated after creation except by downstream
// payment-status webhooks, which are outside this service.
type RegistrationRecord struct {
	ID         string
	Number     string
	EventID    string
	BatchID    string
	CategoryID string
	Status     RegistrationStatus
	IdentityID string
	AthleteID  string
	PaymentID  string
	Waiver     *WaiverAudit
	CreatedAt  time.Time
}
