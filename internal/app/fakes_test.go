package app

import (
	"context"
	"errors"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

var errBoom = errors.New("boom")

type fakeCatalog struct {
	batch domain.TicketBatch
	err   error
}

func (f *fakeCatalog) GetTicketBatch(_ context.Context, eventID, batchID string) (domain.TicketBatch, error) {
	if f.err != nil {
		return domain.TicketBatch{}, f.err
	}
	return f.batch, nil
}

type fakeIdentities struct {
	byEmail   map[string]domain.Identity
	created   []domain.Identity
	lookupErr error
	createErr error
	failFull  bool
	failBare  bool
	createCnt int
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{byEmail: map[string]domain.Identity{}}
}

func (f *fakeIdentities) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if id, ok := f.byEmail[email]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeIdentities) CreateIdentity(_ context.Context, identity domain.Identity) error {
	f.createCnt++
	if f.createErr != nil {
		return f.createErr
	}
	if f.failFull && !identity.Bare() {
		return errBoom
	}
	if f.failBare && identity.Bare() {
		return errBoom
	}
	f.byEmail[identity.Email] = identity
	f.created = append(f.created, identity)
	return nil
}

type fakeRegistrations struct {
	registrations []domain.RegistrationRecord
	athletes      []domain.Athlete
	byDocument    map[string]domain.Athlete

	regErr        error
	regErrAfter   int // fail the Nth CreateRegistration call (1-based), 0 = use regErr always
	regCalls      int
	athleteErrs   map[int]error // per CreateAthlete call (1-based)
	athleteCalls  int
	numberTakenOn int // reject the Nth registration number once
}

func newFakeRegistrations() *fakeRegistrations {
	return &fakeRegistrations{byDocument: map[string]domain.Athlete{}}
}

func (f *fakeRegistrations) CreateRegistration(_ context.Context, reg domain.RegistrationRecord) error {
	f.regCalls++
	if f.numberTakenOn == f.regCalls {
		f.numberTakenOn = 0
		return domain.ErrDuplicateNumber
	}
	if f.regErr != nil && (f.regErrAfter == 0 || f.regErrAfter == f.regCalls) {
		return f.regErr
	}
	f.registrations = append(f.registrations, reg)
	return nil
}

func (f *fakeRegistrations) CreateAthlete(_ context.Context, athlete domain.Athlete) error {
	f.athleteCalls++
	if err, ok := f.athleteErrs[f.athleteCalls]; ok {
		return err
	}
	if _, dup := f.byDocument[athlete.Document]; dup {
		return domain.ErrDuplicateDocument
	}
	f.byDocument[athlete.Document] = athlete
	f.athletes = append(f.athletes, athlete)
	return nil
}

func (f *fakeRegistrations) FindAthleteByDocument(_ context.Context, document string) (*domain.Athlete, error) {
	if a, ok := f.byDocument[document]; ok {
		return &a, nil
	}
	return nil, nil
}

type fakeLedger struct {
	payments []domain.Payment
	err      error
}

func (f *fakeLedger) InsertPayment(_ context.Context, payment domain.Payment) error {
	if f.err != nil {
		return f.err
	}
	f.payments = append(f.payments, payment)
	return nil
}

type fakeInventory struct {
	remaining  map[string]*int
	readErr    error
	decErr     error
	decrements map[string]int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{remaining: map[string]*int{}, decrements: map[string]int{}}
}

func (f *fakeInventory) set(categoryID string, qty int) {
	q := qty
	f.remaining[categoryID] = &q
}

func (f *fakeInventory) GetRemaining(_ context.Context, categoryID string) (*int, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.remaining[categoryID], nil
}

func (f *fakeInventory) Decrement(_ context.Context, categoryID string) (bool, error) {
	if f.decErr != nil {
		return false, f.decErr
	}
	q := f.remaining[categoryID]
	if q == nil {
		return true, nil
	}
	if *q <= 0 {
		return false, nil
	}
	*q--
	f.decrements[categoryID]++
	return true, nil
}

type fakeClubs struct {
	clubs      map[string]domain.DiscountClub
	getErr     error
	incErr     error
	increments int
}

func newFakeClubs() *fakeClubs {
	return &fakeClubs{clubs: map[string]domain.DiscountClub{}}
}

func (f *fakeClubs) GetClub(_ context.Context, clubID string) (domain.DiscountClub, error) {
	if f.getErr != nil {
		return domain.DiscountClub{}, f.getErr
	}
	club, ok := f.clubs[clubID]
	if !ok {
		return domain.DiscountClub{}, domain.ErrClubNotFound
	}
	return club, nil
}

func (f *fakeClubs) IncrementUsage(_ context.Context, clubID string) (bool, error) {
	if f.incErr != nil {
		return false, f.incErr
	}
	club, ok := f.clubs[clubID]
	if !ok || club.Remaining() <= 0 {
		return false, nil
	}
	club.Used++
	f.clubs[clubID] = club
	f.increments++
	return true, nil
}

type fakeProfiles struct {
	saved []domain.SavedProfile
	err   error
}

func (f *fakeProfiles) SaveProfile(_ context.Context, profile domain.SavedProfile) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, profile)
	return nil
}

func (f *fakeProfiles) ListProfiles(_ context.Context, identityID string) ([]domain.SavedProfile, error) {
	var out []domain.SavedProfile
	for _, p := range f.saved {
		if p.IdentityID == identityID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	batches []domain.ConfirmationBatch
	err     error
}

func (f *fakeNotifier) SendConfirmation(_ context.Context, batch domain.ConfirmationBatch) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

type fakeTelemetry struct {
	outcomes []string
	failures []string
}

func (f *fakeTelemetry) SubmissionFinished(outcome string) {
	f.outcomes = append(f.outcomes, outcome)
}

func (f *fakeTelemetry) SideEffectFailed(step string) {
	f.failures = append(f.failures, step)
}

type fakeAffiliates struct {
	affiliates map[string]domain.AffiliateContext
	err        error
}

func (f *fakeAffiliates) GetAffiliate(_ context.Context, affiliateID string) (domain.AffiliateContext, error) {
	if f.err != nil {
		return domain.AffiliateContext{}, f.err
	}
	aff, ok := f.affiliates[affiliateID]
	if !ok {
		return domain.AffiliateContext{}, domain.ErrAffiliateInvalid
	}
	return aff, nil
}
