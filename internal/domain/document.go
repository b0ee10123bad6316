package domain

import (
	"fmt"
	"strings"
)

// DocumentKind selects how a national document number is normalized and
// validated. The rules depend on the participant's country of residence.
type DocumentKind int

const (
	// DocumentCPF is the Brazilian taxpayer number (11 digits with two
	// verifier digits).
	DocumentCPF DocumentKind = iota
	// DocumentDNI is the Argentinian national identity number (7 to 9
	// digits).
	DocumentDNI
	// DocumentGeneric accepts any non-empty value for other countries.
	DocumentGeneric
)

// DocumentKindForCountry maps an ISO country code to a document kind.
func DocumentKindForCountry(country string) DocumentKind {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "BR", "BRA":
		return DocumentCPF
	case "AR", "ARG":
		return DocumentDNI
	default:
		return DocumentGeneric
	}
}

// Normalize strips formatting so equivalent inputs compare equal.
func (k DocumentKind) Normalize(value string) string {
	switch k {
	case DocumentCPF, DocumentDNI:
		return digitsOnly(value)
	default:
		return strings.TrimSpace(value)
	}
}

// Validate checks the normalized value against the kind's rules.
func (k DocumentKind) Validate(value string) error {
	v := k.Normalize(value)
	switch k {
	case DocumentCPF:
		return validateCPF(v)
	case DocumentDNI:
		if len(v) < 7 || len(v) > 9 {
			return fmt.Errorf("%w: DNI must have 7 to 9 digits", ErrInvalidDocument)
		}
		return nil
	default:
		if v == "" {
			return fmt.Errorf("%w: document required", ErrInvalidDocument)
		}
		return nil
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validateCPF(v string) error {
	if len(v) != 11 {
		return fmt.Errorf("%w: CPF must have 11 digits", ErrInvalidDocument)
	}
	allSame := true
	for i := 1; i < len(v); i++ {
		if v[i] != v[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("%w: CPF digits are all equal", ErrInvalidDocument)
	}
	if int(v[9]-'0') != cpfVerifier(v, 9) || int(v[10]-'0') != cpfVerifier(v, 10) {
		return fmt.Errorf("%w: CPF verifier digits do not match", ErrInvalidDocument)
	}
	return nil
}

// cpfVerifier computes the verifier digit at position pos (9 or 10) from
// the preceding digits.
func cpfVerifier(v string, pos int) int {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(v[i]-'0') * (pos + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}
