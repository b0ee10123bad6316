package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/clock"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/pricing"
)

// IdentityRepository provisions the accounts registrations link to.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	CreateIdentity(ctx context.Context, identity domain.Identity) error
}

// RegistrationRepository persists registrations and athlete records.
type RegistrationRepository interface {
	CreateRegistration(ctx context.Context, reg domain.RegistrationRecord) error
	CreateAthlete(ctx context.Context, athlete domain.Athlete) error
	FindAthleteByDocument(ctx context.Context, document string) (*domain.Athlete, error)
}

// LedgerRepository records payment bookkeeping for paid registrations.
type LedgerRepository interface {
	InsertPayment(ctx context.Context, payment domain.Payment) error
}

// InventoryRepository exposes per-category remaining quantity. nil
// remaining means unlimited. Decrement is the atomic conditional
// primitive: it reports false when no unit was left to take.
type InventoryRepository interface {
	GetRemaining(ctx context.Context, categoryID string) (*int, error)
	Decrement(ctx context.Context, categoryID string) (bool, error)
}

// ClubRepository re-checks eligibility and tracks club usage.
type ClubRepository interface {
	GetClub(ctx context.Context, clubID string) (domain.DiscountClub, error)
	IncrementUsage(ctx context.Context, clubID string) (bool, error)
}

// ProfileRepository stores participant snapshots for future checkouts.
type ProfileRepository interface {
	SaveProfile(ctx context.Context, profile domain.SavedProfile) error
	ListProfiles(ctx context.Context, identityID string) ([]domain.SavedProfile, error)
}

// Notifier dispatches the confirmation batch. Fire and forget: failures
// never surface to the buyer.
type Notifier interface {
	SendConfirmation(ctx context.Context, batch domain.ConfirmationBatch) error
}

// Telemetry receives submission outcomes and non-fatal step failures.
type Telemetry interface {
	SubmissionFinished(outcome string)
	SideEffectFailed(step string)
}

// SubmissionDeps groups the orchestrator's external collaborators.
type SubmissionDeps struct {
	Catalog       CatalogRepository
	Identities    IdentityRepository
	Registrations RegistrationRepository
	Ledger        LedgerRepository
	Inventory     InventoryRepository
	Clubs         ClubRepository
	Profiles      ProfileRepository
	Notifier      Notifier
}

// SubmissionService turns a validated roster into durable registrations.
// Participants are processed strictly in index order; within one
// participant the pipeline steps run strictly in sequence. Only two
// failures abort the whole submission: the catalog/inventory read that
// validates the order, and the registration insert itself. Everything
// else is recorded and swallowed.
type SubmissionService struct {
	deps      SubmissionDeps
	engine    pricing.Engine
	clock     clock.Clock
	logger    *log.Logger
	telemetry Telemetry
}

func NewSubmissionService(deps SubmissionDeps, engine pricing.Engine, clk clock.Clock, logger *log.Logger, telemetry Telemetry) *SubmissionService {
	if logger == nil {
		logger = log.Default()
	}
	return &SubmissionService{
		deps:      deps,
		engine:    engine,
		clock:     clk,
		logger:    logger,
		telemetry: telemetry,
	}
}

type SubmitInput struct {
	EventID       string
	BatchID       string
	Tickets       []domain.SelectedTicket
	Roster        []domain.Participant
	Pricing       domain.PricingResult
	Club          *domain.DiscountClubContext
	Affiliate     *domain.AffiliateContext
	PaymentMethod string
	RequestIP     string
	UserAgent     string
}

// SkippedTicket records a participant whose registration was skipped
// because their category's inventory was exhausted.
type SkippedTicket struct {
	Index      int
	CategoryID string
}

// SideEffectFailure is one recorded non-fatal step failure. The
// user-visible outcome stays "registration succeeded"; these feed
// telemetry and operational tooling.
type SideEffectFailure struct {
	Participant int
	Step        string
	Reason      string
}

type SubmissionResult struct {
	RegistrationNumbers []string
	Registrations       []domain.RegistrationRecord
	Pricing             domain.PricingResult
	Skipped             []SkippedTicket
	Failures            []SideEffectFailure
}

// Submit runs the registration pipeline. The roster must already be
// snapshotted by the caller; Submit never mutates it.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (SubmissionResult, error) {
	if len(in.Tickets) == 0 || len(in.Tickets) != len(in.Roster) {
		return SubmissionResult{}, domain.ErrCartRosterMismatch
	}

	now := s.clock.Now()
	res := SubmissionResult{Pricing: in.Pricing}

	batch, err := s.deps.Catalog.GetTicketBatch(ctx, in.EventID, in.BatchID)
	if err != nil {
		s.finish("fatal_catalog")
		return SubmissionResult{}, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	for _, t := range in.Tickets {
		if _, ok := batch.Category(t.CategoryID); !ok {
			s.finish("fatal_catalog")
			return SubmissionResult{}, fmt.Errorf("%w: %s", domain.ErrCategoryNotInBatch, t.CategoryID)
		}
	}

	// Allocation and deadline can be exhausted by concurrent buyers
	// between cart load and submit, so the club is re-checked here. A
	// failed re-check drops the discount rather than the order.
	club := in.Club
	if club != nil {
		dbClub, err := s.deps.Clubs.GetClub(ctx, club.ClubID)
		if err != nil {
			s.record(&res, -1, "club_revalidation", fmt.Sprintf("discount dropped: %v", err))
			club = nil
		} else if !dbClub.Eligible(now) {
			s.record(&res, -1, "club_revalidation", "discount dropped: club no longer eligible")
			club = nil
		}
		if club == nil {
			res.Pricing = s.engine.ComputeOrderTotals(in.Tickets, nil)
		}
	}
	if len(res.Pricing.Lines) != len(in.Tickets) {
		res.Pricing = s.engine.ComputeOrderTotals(in.Tickets, club)
	}

	orderFree := true
	for _, t := range in.Tickets {
		if !t.Free() {
			orderFree = false
			break
		}
	}
	feeCharged := false
	identityIDs := make([]string, len(in.Roster))

	for i := range in.Tickets {
		ticket := in.Tickets[i]
		participant := in.Roster[i]
		line := res.Pricing.Lines[i]

		// Step 1: identity resolution, with a bare-identity fallback
		// that never fails the submission. Runs before the inventory
		// guard, so even a participant skipped for exhaustion keeps
		// their provisioned account.
		identityIDs[i] = s.resolveIdentity(ctx, &res, i, participant, now)

		// Step 2 first half: inventory guard. A read failure means the
		// order cannot be validated at all, which is fatal.
		remaining, err := s.deps.Inventory.GetRemaining(ctx, ticket.CategoryID)
		if err != nil {
			s.finish("fatal_catalog")
			return SubmissionResult{}, fmt.Errorf("%w: inventory read for %s: %v", domain.ErrCatalogUnavailable, ticket.CategoryID, err)
		}
		if remaining != nil && *remaining <= 0 {
			if len(in.Tickets) == 1 {
				s.finish("exhausted")
				return SubmissionResult{}, domain.ErrInventoryExhausted
			}
			res.Skipped = append(res.Skipped, SkippedTicket{Index: i, CategoryID: ticket.CategoryID})
			continue
		}

		// Step 3: registration creation. The one step whose failure
		// leaves nothing to attach anything to.
		reg := domain.RegistrationRecord{
			ID:         uuid.NewString(),
			Number:     newRegistrationNumber(now),
			EventID:    in.EventID,
			BatchID:    in.BatchID,
			CategoryID: ticket.CategoryID,
			Status:     registrationStatus(line.Effective),
			IdentityID: identityIDs[i],
			CreatedAt:  now,
		}
		if participant.WaiverAccepted {
			reg.Waiver = &domain.WaiverAudit{
				AcceptedAt:  now,
				IP:          in.RequestIP,
				UserAgent:   in.UserAgent,
				DeviceClass: deviceClass(in.UserAgent),
			}
		}
		if err := s.createRegistration(ctx, &reg, now); err != nil {
			s.finish("fatal_persist")
			return SubmissionResult{}, fmt.Errorf("%w: participant %d: %v", domain.ErrRegistrationFailed, i, err)
		}

		// Step 4: athlete record; duplicate documents degrade the link,
		// never the registration.
		s.createAthlete(ctx, &res, i, &reg, participant, now)

		// Step 5: payment bookkeeping for paid orders.
		if !orderFree && line.Effective.IsPositive() {
			amount := line.Effective
			if !feeCharged && res.Pricing.Fee.IsPositive() {
				amount = amount.Add(res.Pricing.Fee)
				feeCharged = true
			}
			payment := domain.Payment{
				ID:             uuid.NewString(),
				RegistrationID: reg.ID,
				Amount:         amount,
				Discount:       line.Discount,
				Method:         in.PaymentMethod,
				Status:         domain.PaymentPending,
				CreatedAt:      now,
			}
			if in.Affiliate != nil {
				payment.AffiliateID = in.Affiliate.AffiliateID
				payment.Commission = s.engine.CommissionFor(in.Affiliate, line.Effective)
			}
			if err := s.deps.Ledger.InsertPayment(ctx, payment); err != nil {
				s.record(&res, i, "payment_insert", err.Error())
			} else {
				reg.PaymentID = payment.ID
			}
		}

		// Step 6: best-effort decrement; the registration already
		// exists, so a failure here is an inventory accuracy problem,
		// not the buyer's.
		if remaining != nil {
			if ok, err := s.deps.Inventory.Decrement(ctx, ticket.CategoryID); err != nil {
				s.record(&res, i, "inventory_decrement", err.Error())
			} else if !ok {
				s.record(&res, i, "inventory_decrement", "no unit left to decrement")
			}
		}

		// Step 7: club usage.
		if club != nil && line.Discount.IsPositive() {
			if ok, err := s.deps.Clubs.IncrementUsage(ctx, club.ClubID); err != nil {
				s.record(&res, i, "club_increment", err.Error())
			} else if !ok {
				s.record(&res, i, "club_increment", "allocation already consumed")
			}
		}

		res.RegistrationNumbers = append(res.RegistrationNumbers, reg.Number)
		res.Registrations = append(res.Registrations, reg)
	}

	if len(res.RegistrationNumbers) == 0 {
		s.finish("exhausted")
		return SubmissionResult{}, domain.ErrInventoryExhausted
	}

	s.saveProfiles(ctx, &res, in, identityIDs, now)
	s.notify(ctx, &res, in, now)

	s.finish("success")
	return res, nil
}

func (s *SubmissionService) resolveIdentity(ctx context.Context, res *SubmissionResult, i int, p domain.Participant, now time.Time) string {
	existing, err := s.deps.Identities.FindByEmail(ctx, p.Email)
	if err == nil && existing != nil {
		return existing.ID
	}
	if err != nil {
		s.record(res, i, "identity_lookup", err.Error())
	}

	full := domain.Identity{
		ID:        uuid.NewString(),
		Email:     p.Email,
		FullName:  p.FullName,
		Phone:     p.Phone,
		CreatedAt: now,
	}
	err = s.deps.Identities.CreateIdentity(ctx, full)
	if err == nil {
		return full.ID
	}
	// A concurrent checkout may have provisioned the same email between
	// the lookup and the insert.
	if existing, ferr := s.deps.Identities.FindByEmail(ctx, p.Email); ferr == nil && existing != nil {
		return existing.ID
	}
	s.record(res, i, "identity_create", err.Error())

	bare := domain.Identity{ID: uuid.NewString(), Email: p.Email, CreatedAt: now}
	err = s.deps.Identities.CreateIdentity(ctx, bare)
	if err == nil {
		return bare.ID
	}
	s.record(res, i, "identity_fallback", err.Error())
	return ""
}

// createRegistration retries once with a fresh number when the unique
// index rejects a collision.
func (s *SubmissionService) createRegistration(ctx context.Context, reg *domain.RegistrationRecord, now time.Time) error {
	err := s.deps.Registrations.CreateRegistration(ctx, *reg)
	if err == nil {
		return nil
	}
	if err == domain.ErrDuplicateNumber {
		reg.Number = newRegistrationNumber(now)
		return s.deps.Registrations.CreateRegistration(ctx, *reg)
	}
	return err
}

func (s *SubmissionService) createAthlete(ctx context.Context, res *SubmissionResult, i int, reg *domain.RegistrationRecord, p domain.Participant, now time.Time) {
	athlete := domain.Athlete{
		ID:             uuid.NewString(),
		RegistrationID: reg.ID,
		IdentityID:     reg.IdentityID,
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		Age:            p.Age,
		Gender:         p.Gender,
		Country:        p.Country,
		Document:       p.Document,
		Address:        p.Address,
		ShirtSize:      p.ShirtSize,
		EmergencyName:  p.EmergencyName,
		EmergencyPhone: p.EmergencyPhone,
		CreatedAt:      now,
	}
	err := s.deps.Registrations.CreateAthlete(ctx, athlete)
	if err == nil {
		reg.AthleteID = athlete.ID
		return
	}
	if err == domain.ErrDuplicateDocument {
		if existing, ferr := s.deps.Registrations.FindAthleteByDocument(ctx, p.Document); ferr == nil && existing != nil {
			reg.AthleteID = existing.ID
			s.record(res, i, "athlete_dedup", "linked to existing athlete")
			return
		}
		s.record(res, i, "athlete_dedup", "duplicate document, no link established")
		return
	}
	s.record(res, i, "athlete_create", err.Error())
}

func (s *SubmissionService) saveProfiles(ctx context.Context, res *SubmissionResult, in SubmitInput, identityIDs []string, now time.Time) {
	skipped := make(map[int]bool, len(res.Skipped))
	for _, sk := range res.Skipped {
		skipped[sk.Index] = true
	}
	for i, p := range in.Roster {
		if !p.SaveProfile || skipped[i] || identityIDs[i] == "" {
			continue
		}
		profile := domain.SavedProfile{
			ID:          uuid.NewString(),
			IdentityID:  identityIDs[i],
			Participant: p,
			CreatedAt:   now,
		}
		if err := s.deps.Profiles.SaveProfile(ctx, profile); err != nil {
			s.record(res, i, "profile_save", err.Error())
		}
	}
}

func (s *SubmissionService) notify(ctx context.Context, res *SubmissionResult, in SubmitInput, now time.Time) {
	batch := domain.ConfirmationBatch{
		EventID:             in.EventID,
		PrimaryEmail:        in.Roster[0].Email,
		RegistrationNumbers: res.RegistrationNumbers,
		Total:               res.Pricing.Total.StringFixed(2),
		SentAt:              now,
	}
	if err := s.deps.Notifier.SendConfirmation(ctx, batch); err != nil {
		s.record(res, -1, "notification", err.Error())
	}
}

func (s *SubmissionService) record(res *SubmissionResult, participant int, step, reason string) {
	res.Failures = append(res.Failures, SideEffectFailure{Participant: participant, Step: step, Reason: reason})
	s.logger.Printf("submission step failed step=%s participant=%d reason=%s", step, participant, reason)
	if s.telemetry != nil {
		s.telemetry.SideEffectFailed(step)
	}
}

func (s *SubmissionService) finish(outcome string) {
	if s.telemetry != nil {
		s.telemetry.SubmissionFinished(outcome)
	}
}

func registrationStatus(effective decimal.Decimal) domain.RegistrationStatus {
	if effective.IsPositive() {
		return domain.RegistrationPending
	}
	return domain.RegistrationConfirmed
}

func deviceClass(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, marker := range []string{"mobile", "android", "iphone", "ipad"} {
		if strings.Contains(ua, marker) {
			return "mobile"
		}
	}
	return "desktop"
}
