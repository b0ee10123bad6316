package checkout

import (
	"errors"
	"sync"
	"time"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
)

// Session aggregates one buyer's cart, roster and wizard. All methods
// are safe for concurrent use; the HTTP transport shares sessions
// between requests.
type Session struct {
	ID      string
	EventID string
	BatchID string

	mu            sync.Mutex
	tickets       []domain.SelectedTicket
	roster        *Roster
	wizard        *Wizard
	club          *domain.DiscountClubContext
	affiliate     *domain.AffiliateContext
	paymentMethod string
	createdAt     time.Time
}

// NewSession creates a session for an already validated cart. The
// roster starts with one empty participant per ticket.
func NewSession(id, eventID, batchID string, tickets []domain.SelectedTicket, club *domain.DiscountClubContext, affiliate *domain.AffiliateContext, now time.Time) *Session {
	return &Session{
		ID:        id,
		EventID:   eventID,
		BatchID:   batchID,
		tickets:   append([]domain.SelectedTicket(nil), tickets...),
		roster:    NewRoster(len(tickets)),
		wizard:    NewWizard(len(tickets) == 1),
		club:      club,
		affiliate: affiliate,
		createdAt: now,
	}
}

// UpdateField forwards a field edit to the roster while the wizard
// still allows edits.
func (s *Session) UpdateField(index int, field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wizard.CanEdit() {
		return ErrWizardInert
	}
	if err := s.roster.Update(index, field, value); err != nil {
		return err
	}
	s.wizard.edited()
	return nil
}

// ReplaceRoster merges externally sourced data (e.g. a postal lookup)
// into the roster as a whole.
func (s *Session) ReplaceRoster(list []domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wizard.CanEdit() {
		return ErrWizardInert
	}
	if err := s.roster.ReplaceAll(list); err != nil {
		return err
	}
	s.wizard.edited()
	return nil
}

// ToggleSaveProfile marks a participant to be remembered after submit.
func (s *Session) ToggleSaveProfile(index int, save bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wizard.CanEdit() {
		return ErrWizardInert
	}
	return s.roster.ToggleSaveProfile(index, save)
}

// ReadyToSubmit reports whether the wizard validated the last step of
// the last participant and no edit happened since.
func (s *Session) ReadyToSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.Ready()
}

// SetPaymentMethod records the order-level payment method choice.
func (s *Session) SetPaymentMethod(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wizard.CanEdit() {
		return ErrWizardInert
	}
	s.paymentMethod = method
	s.wizard.edited()
	return nil
}

// Next advances the wizard.
func (s *Session) Next() (Outcome, *ValidationError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.Next(s.roster, s.tickets, s.paymentMethod)
}

// Back moves the wizard one step backwards.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.Back()
}

// AddFromProfile answers a pending saved-profile offer by inserting a
// new ticket/participant pair atomically, keeping roster alignment.
// The wizard repositions on the new participant so their data can be
// reviewed.
func (s *Session) AddFromProfile(ticket domain.SelectedTicket, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard.Status() != StatusOfferingProfiles {
		return ErrNoOffer
	}
	s.tickets = append(s.tickets, ticket)
	s.roster.append(p)
	s.wizard.participantAdded(s.roster.Len() - 1)
	return nil
}

// DeclineOffer answers a pending saved-profile offer negatively.
func (s *Session) DeclineOffer() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.DeclineOffer()
}

// Snapshot freezes the cart for submission: independent copies of
// tickets and participants that later side effects cannot race.
func (s *Session) Snapshot() ([]domain.SelectedTicket, []domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tickets := append([]domain.SelectedTicket(nil), s.tickets...)
	return tickets, s.roster.Snapshot()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.State()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.Status()
}

func (s *Session) Tickets() []domain.SelectedTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SelectedTicket(nil), s.tickets...)
}

func (s *Session) Club() *domain.DiscountClubContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.club
}

func (s *Session) Affiliate() *domain.AffiliateContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.affiliate
}

func (s *Session) PaymentMethod() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentMethod
}

// MarkSubmitted locks the session after a successful submission.
func (s *Session) MarkSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wizard.MarkSubmitted()
}

// MarkSubmissionFailed re-enables the wizard for a retry.
func (s *Session) MarkSubmissionFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wizard.MarkSubmissionFailed()
}

// Store keeps live checkout sessions in memory, keyed by session id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
