package checkout

import (
	"errors"
	"strconv"
	"strings"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

var (
	ErrIndexOutOfRange = errors.New("participant index out of range")
	ErrUnknownField    = errors.New("unknown participant field")
	ErrLengthMismatch  = errors.New("roster length must match ticket count")
	ErrInvalidValue    = errors.New("invalid field value")
)

// Field names a participant attribute updatable through the wizard.
type Field string

const (
	FieldFullName       Field = "full_name"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldAge            Field = "age"
	FieldGender         Field = "gender"
	FieldCountry        Field = "country"
	FieldDocument       Field = "document"
	FieldShirtSize      Field = "shirt_size"
	FieldEmergencyName  Field = "emergency_name"
	FieldEmergencyPhone Field = "emergency_phone"
	FieldWaiverAccepted Field = "waiver_accepted"
	FieldStreet         Field = "street"
	FieldNumber         Field = "number"
	FieldComplement     Field = "complement"
	FieldNeighborhood   Field = "neighborhood"
	FieldCity           Field = "city"
	FieldState          Field = "state"
	FieldPostalCode     Field = "postal_code"
)

// Roster is the in-memory collection of participants, index-aligned
// with the cart's SelectedTickets. Its length always equals the ticket
// count; the session inserts ticket/participant pairs atomically.
type Roster struct {
	participants []domain.Participant
}

// NewRoster creates n empty participants, one per selected ticket.
func NewRoster(n int) *Roster {
	return &Roster{participants: make([]domain.Participant, n)}
}

func (r *Roster) Len() int {
	return len(r.participants)
}

// Get returns a copy of the participant at index i.
func (r *Roster) Get(i int) (domain.Participant, error) {
	if i < 0 || i >= len(r.participants) {
		return domain.Participant{}, ErrIndexOutOfRange
	}
	return r.participants[i], nil
}

// Update sets one field on one participant. Changing the country clears
// the document: the previous value was validated against another
// country's format and must not be carried over silently.
func (r *Roster) Update(i int, field Field, value string) error {
	if i < 0 || i >= len(r.participants) {
		return ErrIndexOutOfRange
	}
	p := &r.participants[i]

	switch field {
	case FieldFullName:
		p.FullName = strings.TrimSpace(value)
	case FieldEmail:
		p.Email = strings.TrimSpace(value)
	case FieldPhone:
		p.Phone = strings.TrimSpace(value)
	case FieldAge:
		age, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || age < 0 {
			return ErrInvalidValue
		}
		p.Age = age
	case FieldGender:
		p.Gender = strings.TrimSpace(value)
	case FieldCountry:
		country := strings.TrimSpace(value)
		if country != p.Country {
			p.Document = ""
		}
		p.Country = country
	case FieldDocument:
		p.Document = domain.DocumentKindForCountry(p.Country).Normalize(value)
	case FieldShirtSize:
		p.ShirtSize = strings.TrimSpace(value)
	case FieldEmergencyName:
		p.EmergencyName = strings.TrimSpace(value)
	case FieldEmergencyPhone:
		p.EmergencyPhone = strings.TrimSpace(value)
	case FieldWaiverAccepted:
		accepted, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return ErrInvalidValue
		}
		p.WaiverAccepted = accepted
	case FieldStreet:
		p.Address.Street = strings.TrimSpace(value)
	case FieldNumber:
		p.Address.Number = strings.TrimSpace(value)
	case FieldComplement:
		p.Address.Complement = strings.TrimSpace(value)
	case FieldNeighborhood:
		p.Address.Neighborhood = strings.TrimSpace(value)
	case FieldCity:
		p.Address.City = strings.TrimSpace(value)
	case FieldState:
		p.Address.State = strings.TrimSpace(value)
	case FieldPostalCode:
		p.Address.PostalCode = strings.TrimSpace(value)
	default:
		return ErrUnknownField
	}
	return nil
}

// ReplaceAll swaps the whole roster, e.g. after a postal lookup merged
// data for every participant. The new list must keep ticket alignment.
func (r *Roster) ReplaceAll(list []domain.Participant) error {
	if len(list) != len(r.participants) {
		return ErrLengthMismatch
	}
	r.participants = append([]domain.Participant(nil), list...)
	return nil
}

// ToggleSaveProfile marks whether the participant's data should be
// snapshotted after a successful submission.
func (r *Roster) ToggleSaveProfile(i int, save bool) error {
	if i < 0 || i >= len(r.participants) {
		return ErrIndexOutOfRange
	}
	r.participants[i].SaveProfile = save
	return nil
}

// append adds one participant; only the session may call it, paired
// with the matching ticket insert.
func (r *Roster) append(p domain.Participant) {
	r.participants = append(r.participants, p)
}

// Snapshot returns an independent copy of all participants, taken at
// submission time so asynchronous side effects cannot race UI edits.
func (r *Roster) Snapshot() []domain.Participant {
	out := make([]domain.Participant, len(r.participants))
	for i, p := range r.participants {
		out[i] = p.Clone()
	}
	return out
}
