package domain

import "time"

// Identity is the account a registration is tied to, keyed by email.
// Bare identities (name empty) are created as a fallback when full
// account provisioning fails mid-submission.
type Identity struct {
	ID        string
	Email     string
	FullName  string
	Phone     string
	CreatedAt time.Time
}

// Bare reports whether this identity was created as a fallback shell.
func (i Identity) Bare() bool {
	return i.FullName == ""
}

// Athlete stores the demographic record linked to a registration. The
// document column carries a unique index, so concurrent registrations
// of the same person surface as ErrDuplicateDocument.
type Athlete struct {
	ID             string
	RegistrationID string
	IdentityID     string
	FullName       string
	Email          string
	Phone          string
	Age            int
	Gender         string
	Country        string
	Document       string
	Address        Address
	ShirtSize      string
	EmergencyName  string
	EmergencyPhone string
	CreatedAt      time.Time
}

// SavedProfile is a participant snapshot kept for future checkouts, so
// a buyer can add companions without retyping their data.
type SavedProfile struct {
	ID          string
	IdentityID  string
	Participant Participant
	CreatedAt   time.Time
}

// ConfirmationBatch is the payload handed to the notifier after a
// submission: one message per order, covering every participant.
type ConfirmationBatch struct {
	EventID             string
	PrimaryEmail        string
	RegistrationNumbers []string
	Total               string
	SentAt              time.Time
}
