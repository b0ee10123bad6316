package checkout

import (
	"errors"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

var (
	ErrWizardInert  = errors.New("wizard already submitted")
	ErrOfferPending = errors.New("profile offer must be answered first")
	ErrNoOffer      = errors.New("no profile offer pending")
	ErrAtFirstStep  = errors.New("already at the first step")
	ErrNotReady     = errors.New("checkout steps not completed")
)

// Step is one screen of the checkout wizard.
type Step int

const (
	StepPersonalData Step = iota + 1
	StepAddress
	StepPaymentAndTerms
)

func (s Step) String() string {
	switch s {
	case StepPersonalData:
		return "personal_data"
	case StepAddress:
		return "address"
	case StepPaymentAndTerms:
		return "payment_and_terms"
	default:
		return "unknown"
	}
}

// State is the wizard's full position: which participant is being
// edited and which step they are on.
type State struct {
	Participant int
	Step        Step
}

// Status is the wizard lifecycle.
type Status int

const (
	StatusActive Status = iota
	StatusOfferingProfiles
	StatusSubmitted
	StatusSubmissionFailed
)

// Outcome reports what a Next call did.
type Outcome int

const (
	// OutcomeStay: validation failed, position unchanged.
	OutcomeStay Outcome = iota
	// OutcomeAdvanced: moved to the next step or next participant.
	OutcomeAdvanced
	// OutcomeOfferProfiles: last participant finished and the cart held
	// a single ticket; the buyer may add companions from saved profiles.
	OutcomeOfferProfiles
	// OutcomeReadyToSubmit: all participants validated, submit may run.
	OutcomeReadyToSubmit
)

// Wizard drives a participant through the ordered checkout steps across
// all roster entries. It owns only position and lifecycle; participant
// data lives in the Roster.
type Wizard struct {
	state   State
	status  Status
	single  bool
	offered bool
	ready   bool
}

// NewWizard starts at (participant 0, personal data). singleTicketCart
// controls whether the saved-profile offer is made at the end.
func NewWizard(singleTicketCart bool) *Wizard {
	return &Wizard{
		state:  State{Participant: 0, Step: StepPersonalData},
		single: singleTicketCart,
	}
}

func (w *Wizard) State() State   { return w.state }
func (w *Wizard) Status() Status { return w.status }

// Ready reports whether every participant passed their final step, so
// submission may run. Any later edit or Back clears it.
func (w *Wizard) Ready() bool { return w.ready }

// edited invalidates a previously reached ready state; changed data
// must pass validation again through Next.
func (w *Wizard) edited() { w.ready = false }

// CanEdit reports whether roster edits and navigation are still allowed.
func (w *Wizard) CanEdit() bool {
	return w.status != StatusSubmitted
}

// Next validates the current step and advances. Validation failures
// keep the position and return the first failing rule.
func (w *Wizard) Next(roster *Roster, tickets []domain.SelectedTicket, paymentMethod string) (Outcome, *ValidationError, error) {
	switch w.status {
	case StatusSubmitted:
		return OutcomeStay, nil, ErrWizardInert
	case StatusOfferingProfiles:
		return OutcomeStay, nil, ErrOfferPending
	}

	p, err := roster.Get(w.state.Participant)
	if err != nil {
		return OutcomeStay, nil, err
	}
	if verr := validateStep(w.state.Step, p, tickets[w.state.Participant], !entirelyFree(tickets), paymentMethod); verr != nil {
		return OutcomeStay, verr, nil
	}

	next, atEnd := transition(w.state, roster.Len())
	if !atEnd {
		w.state = next
		return OutcomeAdvanced, nil, nil
	}
	if w.single && !w.offered {
		w.offered = true
		w.status = StatusOfferingProfiles
		return OutcomeOfferProfiles, nil, nil
	}
	w.ready = true
	return OutcomeReadyToSubmit, nil, nil
}

// transition is the pure step function over (participant, step). The
// second return is true when the last participant's last step was
// completed.
func transition(s State, participants int) (State, bool) {
	if s.Step < StepPaymentAndTerms {
		return State{Participant: s.Participant, Step: s.Step + 1}, false
	}
	if s.Participant < participants-1 {
		return State{Participant: s.Participant + 1, Step: StepPersonalData}, false
	}
	return s, true
}

// Back moves one step backwards without re-validating. From the first
// step of participant i>0 it returns to the last step of participant
// i-1.
func (w *Wizard) Back() error {
	switch w.status {
	case StatusSubmitted:
		return ErrWizardInert
	case StatusOfferingProfiles:
		// Abandon the offer and return to the last participant's final step.
		w.status = StatusActive
		return nil
	}
	w.ready = false

	switch {
	case w.state.Step > StepPersonalData:
		w.state.Step--
	case w.state.Participant > 0:
		w.state.Participant--
		w.state.Step = StepPaymentAndTerms
	default:
		return ErrAtFirstStep
	}
	return nil
}

// participantAdded repositions the wizard on the freshly inserted
// participant. Called by the session after a paired ticket/roster
// insert.
func (w *Wizard) participantAdded(index int) {
	w.status = StatusActive
	w.ready = false
	w.state = State{Participant: index, Step: StepPersonalData}
}

// DeclineOffer answers the saved-profile offer negatively; submission
// may proceed.
func (w *Wizard) DeclineOffer() (Outcome, error) {
	if w.status != StatusOfferingProfiles {
		return OutcomeStay, ErrNoOffer
	}
	w.status = StatusActive
	w.ready = true
	return OutcomeReadyToSubmit, nil
}

// MarkSubmitted makes the wizard inert; further edits are rejected.
func (w *Wizard) MarkSubmitted() {
	w.status = StatusSubmitted
}

// MarkSubmissionFailed re-enables the wizard so the buyer may retry.
func (w *Wizard) MarkSubmissionFailed() {
	w.status = StatusSubmissionFailed
}

func entirelyFree(tickets []domain.SelectedTicket) bool {
	for _, t := range tickets {
		if !t.Free() {
			return false
		}
	}
	return true
}
