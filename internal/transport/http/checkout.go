package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/app"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/checkout"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/clock"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/pricing"
)

// CartLoader validates raw cart input before a session is created.
type CartLoader interface {
	LoadCart(ctx context.Context, in app.LoadCartInput) (app.LoadCartResult, error)
}

// Submitter runs the registration pipeline for a finished session.
type Submitter interface {
	Submit(ctx context.Context, in app.SubmitInput) (app.SubmissionResult, error)
}

// ProfileDirectory resolves saved participant profiles by account email.
type ProfileDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	ListProfiles(ctx context.Context, identityID string) ([]domain.SavedProfile, error)
}

// CheckoutHandler exposes the wizard session lifecycle over HTTP.
type CheckoutHandler struct {
	store     *checkout.Store
	cart      CartLoader
	submitter Submitter
	profiles  ProfileDirectory
	engine    pricing.Engine
	clock     clock.Clock
}

func NewCheckoutHandler(store *checkout.Store, cart CartLoader, submitter Submitter, profiles ProfileDirectory, engine pricing.Engine, clk clock.Clock) *CheckoutHandler {
	return &CheckoutHandler{
		store:     store,
		cart:      cart,
		submitter: submitter,
		profiles:  profiles,
		engine:    engine,
		clock:     clk,
	}
}

type createSessionRequest struct {
	EventID     string         `json:"event_id"`
	BatchID     string         `json:"batch_id"`
	Quantities  map[string]int `json:"quantities"`
	ClubID      string         `json:"club_id,omitempty"`
	AffiliateID string         `json:"affiliate_id,omitempty"`
}

func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	res, err := h.cart.LoadCart(r.Context(), app.LoadCartInput{
		EventID:     req.EventID,
		BatchID:     req.BatchID,
		Quantities:  req.Quantities,
		ClubID:      req.ClubID,
		AffiliateID: req.AffiliateID,
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	session := checkout.NewSession(uuid.NewString(), req.EventID, req.BatchID, res.Tickets, res.Club, res.Affiliate, h.clock.Now())
	h.store.Put(session)

	writeJSON(w, http.StatusCreated, h.sessionView(session))
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrNegativePrice):
		writeError(w, http.StatusBadRequest, codeNegativePrice, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrBatchNotFound):
		writeError(w, http.StatusNotFound, codeBatchNotFound, err.Error())
	case errors.Is(err, domain.ErrCategoryNotInBatch):
		writeError(w, http.StatusNotFound, codeCategoryNotInBatch, err.Error())
	case errors.Is(err, domain.ErrClubNotFound):
		writeError(w, http.StatusNotFound, codeClubNotFound, err.Error())
	case errors.Is(err, domain.ErrBatchClosed):
		writeError(w, http.StatusConflict, codeBatchClosed, err.Error())
	case errors.Is(err, domain.ErrClubExhausted):
		writeError(w, http.StatusConflict, codeClubExhausted, err.Error())
	case errors.Is(err, domain.ErrClubExpired):
		writeError(w, http.StatusConflict, codeClubExpired, err.Error())
	case errors.Is(err, domain.ErrAffiliateInvalid):
		writeError(w, http.StatusBadRequest, codeAffiliateInvalid, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(session))
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *CheckoutHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidField, "invalid participant index")
		return
	}

	var req updateFieldRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	// save_profile is a roster flag, not wizard form data.
	if req.Field == "save_profile" {
		save, perr := strconv.ParseBool(req.Value)
		if perr != nil {
			writeError(w, http.StatusBadRequest, codeInvalidField, checkout.ErrInvalidValue.Error())
			return
		}
		if err := session.ToggleSaveProfile(index, save); err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.sessionView(session))
		return
	}

	if err := session.UpdateField(index, checkout.Field(req.Field), req.Value); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(session))
}

type addressPayload struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
}

type participantPayload struct {
	FullName       string         `json:"full_name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Age            int            `json:"age"`
	Gender         string         `json:"gender"`
	Country        string         `json:"country"`
	Document       string         `json:"document"`
	Address        addressPayload `json:"address"`
	ShirtSize      string         `json:"shirt_size"`
	EmergencyName  string         `json:"emergency_name"`
	EmergencyPhone string         `json:"emergency_phone"`
	WaiverAccepted bool           `json:"waiver_accepted"`
	SaveProfile    bool           `json:"save_profile"`
}

func (p participantPayload) toDomain() domain.Participant {
	return domain.Participant{
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    p.Phone,
		Age:      p.Age,
		Gender:   p.Gender,
		Country:  p.Country,
		Document: domain.DocumentKindForCountry(p.Country).Normalize(p.Document),
		Address: domain.Address{
			Street:       p.Address.Street,
			Number:       p.Address.Number,
			Complement:   p.Address.Complement,
			Neighborhood: p.Address.Neighborhood,
			City:         p.Address.City,
			State:        p.Address.State,
			PostalCode:   p.Address.PostalCode,
		},
		ShirtSize:      p.ShirtSize,
		EmergencyName:  p.EmergencyName,
		EmergencyPhone: p.EmergencyPhone,
		WaiverAccepted: p.WaiverAccepted,
		SaveProfile:    p.SaveProfile,
	}
}

type replaceParticipantsRequest struct {
	Participants []participantPayload `json:"participants"`
}

// ReplaceParticipants swaps the whole roster at once, used when the
// client submits a complete step form instead of per-field edits.
func (h *CheckoutHandler) ReplaceParticipants(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req replaceParticipantsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	list := make([]domain.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		list = append(list, p.toDomain())
	}
	if err := session.ReplaceRoster(list); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(session))
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

func (h *CheckoutHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req paymentMethodRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if err := session.SetPaymentMethod(req.Method); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(session))
}

type nextResponse struct {
	Outcome    string                    `json:"outcome"`
	Validation *checkout.ValidationError `json:"validation,omitempty"`
	Session    sessionView               `json:"session"`
}

func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	outcome, verr, err := session.Next()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nextResponse{
		Outcome:    outcomeString(outcome),
		Validation: verr,
		Session:    h.sessionView(session),
	})
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := session.Back(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(session))
}

func (h *CheckoutHandler) DeclineOffer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	outcome, err := session.DeclineOffer()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nextResponse{
		Outcome: outcomeString(outcome),
		Session: h.sessionView(session),
	})
}

type profileView struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Document string `json:"document"`
}

// ListProfiles returns the saved profiles for the account matching the
// given email, shown while the session offers companion insertion.
func (h *CheckoutHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.lookup(w, r); !ok {
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, codeInvalidField, "email query parameter is required")
		return
	}

	identity, err := h.profiles.FindByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	if identity == nil {
		writeError(w, http.StatusNotFound, codeIdentityNotFound, domain.ErrIdentityNotFound.Error())
		return
	}

	profiles, err := h.profiles.ListProfiles(r.Context(), identity.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	resp := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, profileView{ID: p.ID, FullName: p.Participant.FullName, Document: p.Participant.Document})
	}
	writeJSON(w, http.StatusOK, resp)
}

type addProfileRequest struct {
	Email     string `json:"email"`
	ProfileID string `json:"profile_id"`
}

// AddFromProfile answers a pending companion offer by inserting a new
// ticket/participant pair built from a saved profile.
func (h *CheckoutHandler) AddFromProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req addProfileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	identity, err := h.profiles.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	if identity == nil {
		writeError(w, http.StatusNotFound, codeIdentityNotFound, domain.ErrIdentityNotFound.Error())
		return
	}
	profiles, err := h.profiles.ListProfiles(r.Context(), identity.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	var selected *domain.SavedProfile
	for i := range profiles {
		if profiles[i].ID == req.ProfileID {
			selected = &profiles[i]
			break
		}
	}
	if selected == nil {
		writeError(w, http.StatusNotFound, codeNotFound, domain.ErrProfileNotFound.Error())
		return
	}

	// The companion rides on the same category as the original ticket.
	tickets := session.Tickets()
	if len(tickets) == 0 {
		writeError(w, http.StatusConflict, codeNoOffer, checkout.ErrNoOffer.Error())
		return
	}
	if err := session.AddFromProfile(tickets[0], selected.Participant); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(session))
}

type submitResponse struct {
	RegistrationNumbers []string          `json:"registration_numbers"`
	Pricing             pricingView       `json:"pricing"`
	Skipped             []skippedView     `json:"skipped,omitempty"`
	Warnings            []warningView     `json:"warnings,omitempty"`
	Registrations       []registrationRef `json:"registrations"`
}

type skippedView struct {
	Index      int    `json:"index"`
	CategoryID string `json:"category_id"`
}

type warningView struct {
	Participant int    `json:"participant"`
	Step        string `json:"step"`
}

type registrationRef struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	switch session.Status() {
	case checkout.StatusSubmitted:
		writeError(w, http.StatusConflict, codeSessionLocked, checkout.ErrWizardInert.Error())
		return
	case checkout.StatusOfferingProfiles:
		writeError(w, http.StatusConflict, codeOfferPending, checkout.ErrOfferPending.Error())
		return
	}
	// The wizard is the validation gate: only a session whose last step
	// passed Next may reach the pipeline.
	if !session.ReadyToSubmit() {
		writeError(w, http.StatusConflict, codeNotReadyToSubmit, checkout.ErrNotReady.Error())
		return
	}

	tickets, roster := session.Snapshot()
	result, err := h.submitter.Submit(r.Context(), app.SubmitInput{
		EventID:       session.EventID,
		BatchID:       session.BatchID,
		Tickets:       tickets,
		Roster:        roster,
		Pricing:       h.engine.ComputeOrderTotals(tickets, session.Club()),
		Club:          session.Club(),
		Affiliate:     session.Affiliate(),
		PaymentMethod: session.PaymentMethod(),
		RequestIP:     clientIP(r),
		UserAgent:     r.UserAgent(),
	})
	if err != nil {
		session.MarkSubmissionFailed()
		writeSubmitError(w, err)
		return
	}
	session.MarkSubmitted()

	resp := submitResponse{
		RegistrationNumbers: result.RegistrationNumbers,
		Pricing:             pricingViewOf(result.Pricing),
	}
	for _, sk := range result.Skipped {
		resp.Skipped = append(resp.Skipped, skippedView{Index: sk.Index, CategoryID: sk.CategoryID})
	}
	for _, f := range result.Failures {
		resp.Warnings = append(resp.Warnings, warningView{Participant: f.Participant, Step: f.Step})
	}
	for _, reg := range result.Registrations {
		resp.Registrations = append(resp.Registrations, registrationRef{
			ID:     reg.ID,
			Number: reg.Number,
			Status: string(reg.Status),
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCartRosterMismatch):
		writeError(w, http.StatusConflict, codeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrInventoryExhausted):
		writeError(w, http.StatusConflict, codeInventoryExhausted, domain.ErrInventoryExhausted.Error())
	case errors.Is(err, domain.ErrCategoryNotInBatch):
		writeError(w, http.StatusConflict, codeCategoryNotInBatch, err.Error())
	case errors.Is(err, domain.ErrCatalogUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeCatalogUnavailable, domain.ErrCatalogUnavailable.Error())
	case errors.Is(err, domain.ErrRegistrationFailed):
		writeError(w, http.StatusInternalServerError, codeRegistrationFailed, domain.ErrRegistrationFailed.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrWizardInert):
		writeError(w, http.StatusConflict, codeSessionLocked, err.Error())
	case errors.Is(err, checkout.ErrOfferPending):
		writeError(w, http.StatusConflict, codeOfferPending, err.Error())
	case errors.Is(err, checkout.ErrNoOffer):
		writeError(w, http.StatusConflict, codeNoOffer, err.Error())
	case errors.Is(err, checkout.ErrAtFirstStep):
		writeError(w, http.StatusConflict, codeAtFirstStep, err.Error())
	case errors.Is(err, checkout.ErrIndexOutOfRange),
		errors.Is(err, checkout.ErrUnknownField),
		errors.Is(err, checkout.ErrInvalidValue),
		errors.Is(err, checkout.ErrLengthMismatch):
		writeError(w, http.StatusBadRequest, codeInvalidField, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func (h *CheckoutHandler) lookup(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	session, err := h.store.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeSessionNotFound, checkout.ErrSessionNotFound.Error())
		return nil, false
	}
	return session, true
}

type sessionView struct {
	ID      string       `json:"id"`
	EventID string       `json:"event_id"`
	BatchID string       `json:"batch_id"`
	Status  string       `json:"status"`
	State   stateView    `json:"state"`
	Tickets []ticketView `json:"tickets"`
	Pricing pricingView  `json:"pricing"`
}

type stateView struct {
	Participant int    `json:"participant"`
	Step        string `json:"step"`
}

type ticketView struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	UnitPrice    string `json:"unit_price"`
	IsFree       bool   `json:"is_free"`
}

type pricingView struct {
	Subtotal string     `json:"subtotal"`
	Discount string     `json:"discount"`
	Fee      string     `json:"fee"`
	Total    string     `json:"total"`
	Lines    []lineView `json:"lines"`
}

type lineView struct {
	CategoryID string `json:"category_id"`
	Price      string `json:"price"`
	Discount   string `json:"discount"`
	Effective  string `json:"effective"`
}

func (h *CheckoutHandler) sessionView(s *checkout.Session) sessionView {
	tickets := s.Tickets()
	state := s.State()
	view := sessionView{
		ID:      s.ID,
		EventID: s.EventID,
		BatchID: s.BatchID,
		Status:  statusString(s.Status()),
		State:   stateView{Participant: state.Participant, Step: state.Step.String()},
		Pricing: pricingViewOf(h.engine.ComputeOrderTotals(tickets, s.Club())),
	}
	for _, t := range tickets {
		view.Tickets = append(view.Tickets, ticketView{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			UnitPrice:    t.UnitPrice.StringFixed(2),
			IsFree:       t.Free(),
		})
	}
	return view
}

func pricingViewOf(p domain.PricingResult) pricingView {
	view := pricingView{
		Subtotal: p.Subtotal.StringFixed(2),
		Discount: p.Discount.StringFixed(2),
		Fee:      p.Fee.StringFixed(2),
		Total:    p.Total.StringFixed(2),
	}
	for _, l := range p.Lines {
		view.Lines = append(view.Lines, lineView{
			CategoryID: l.CategoryID,
			Price:      l.Price.StringFixed(2),
			Discount:   l.Discount.StringFixed(2),
			Effective:  l.Effective.StringFixed(2),
		})
	}
	return view
}

func statusString(s checkout.Status) string {
	switch s {
	case checkout.StatusActive:
		return "active"
	case checkout.StatusOfferingProfiles:
		return "offering_profiles"
	case checkout.StatusSubmitted:
		return "submitted"
	case checkout.StatusSubmissionFailed:
		return "submission_failed"
	default:
		return "unknown"
	}
}

func outcomeString(o checkout.Outcome) string {
	switch o {
	case checkout.OutcomeAdvanced:
		return "advanced"
	case checkout.OutcomeOfferProfiles:
		return "offer_profiles"
	case checkout.OutcomeReadyToSubmit:
		return "ready_to_submit"
	default:
		return "stay"
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
