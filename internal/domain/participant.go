package domain

// Address is a participant's postal address.
type Address struct {
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	PostalCode   string
}

// Complete reports whether every required address field is filled.
// Complement is optional.
func (a Address) Complete() bool {
	return a.Street != "" && a.Number != "" && a.Neighborhood != "" &&
		a.City != "" && a.State != "" && a.PostalCode != ""
}

// Participant holds the data collected by the checkout wizard for one
// SelectedTicket at the same cart index.
type Participant struct {
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
	WaiverAccepted bool
	SaveProfile    bool
}

// Clone returns a deep copy, used to freeze the roster at submission so
// later side effects never race with further wizard edits.
func (p Participant) Clone() Participant {
	return p
}
