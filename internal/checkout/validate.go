package checkout

import (
	"fmt"
	"regexp"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// ValidationError names the first rule the current step fails. It is
// user-correctable and never persisted.
type ValidationError struct {
	Field   Field  `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const (
	CodeRequired        = "required"
	CodeInvalidEmail    = "invalid_email"
	CodeInvalidDocument = "invalid_document"
	CodeInvalidOption   = "invalid_option"
	CodeWaiverRequired  = "waiver_required"
	CodePaymentRequired = "payment_method_required"
)

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateStep runs the step's rules in a fixed order (required fields,
// then email shape, then document format by country, then address
// completeness, then waiver, then payment method for paid orders) and
// returns the first failure. It is total: every participant state maps
// to either nil or exactly one error.
func validateStep(step Step, p domain.Participant, ticket domain.SelectedTicket, orderPaid bool, paymentMethod string) *ValidationError {
	switch step {
	case StepPersonalData:
		return validatePersonalData(p, ticket)
	case StepAddress:
		return validateAddress(p)
	case StepPaymentAndTerms:
		return validatePaymentAndTerms(p, orderPaid, paymentMethod)
	default:
		return &ValidationError{Code: "unknown_step", Message: fmt.Sprintf("unknown step %d", step)}
	}
}

func validatePersonalData(p domain.Participant, ticket domain.SelectedTicket) *ValidationError {
	required := []struct {
		field Field
		empty bool
	}{
		{FieldFullName, p.FullName == ""},
		{FieldEmail, p.Email == ""},
		{FieldPhone, p.Phone == ""},
		{FieldAge, p.Age <= 0},
		{FieldGender, p.Gender == ""},
		{FieldCountry, p.Country == ""},
		{FieldDocument, p.Document == ""},
	}
	for _, r := range required {
		if r.empty {
			return &ValidationError{Field: r.field, Code: CodeRequired, Message: string(r.field) + " is required"}
		}
	}
	if ticket.HasKit && len(ticket.ShirtSizes) > 0 {
		if p.ShirtSize == "" {
			return &ValidationError{Field: FieldShirtSize, Code: CodeRequired, Message: "shirt size is required"}
		}
		if !contains(ticket.ShirtSizes, p.ShirtSize) {
			return &ValidationError{Field: FieldShirtSize, Code: CodeInvalidOption, Message: "shirt size not offered for this ticket"}
		}
	}

	if !emailShape.MatchString(p.Email) {
		return &ValidationError{Field: FieldEmail, Code: CodeInvalidEmail, Message: "email is not valid"}
	}

	kind := domain.DocumentKindForCountry(p.Country)
	if err := kind.Validate(p.Document); err != nil {
		return &ValidationError{Field: FieldDocument, Code: CodeInvalidDocument, Message: err.Error()}
	}
	return nil
}

func validateAddress(p domain.Participant) *ValidationError {
	required := []struct {
		field Field
		empty bool
	}{
		{FieldStreet, p.Address.Street == ""},
		{FieldNumber, p.Address.Number == ""},
		{FieldNeighborhood, p.Address.Neighborhood == ""},
		{FieldCity, p.Address.City == ""},
		{FieldState, p.Address.State == ""},
		{FieldPostalCode, p.Address.PostalCode == ""},
	}
	for _, r := range required {
		if r.empty {
			return &ValidationError{Field: r.field, Code: CodeRequired, Message: string(r.field) + " is required"}
		}
	}
	return nil
}

func validatePaymentAndTerms(p domain.Participant, orderPaid bool, paymentMethod string) *ValidationError {
	if !p.WaiverAccepted {
		return &ValidationError{Field: FieldWaiverAccepted, Code: CodeWaiverRequired, Message: "liability waiver must be accepted"}
	}
	if orderPaid && paymentMethod == "" {
		return &ValidationError{Code: CodePaymentRequired, Message: "a payment method must be selected"}
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
