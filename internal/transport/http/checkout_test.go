package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/app"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/checkout"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/clock"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/pricing"
)

type fakeCartLoader struct {
	result app.LoadCartResult
	err    error
}

func (f *fakeCartLoader) LoadCart(_ context.Context, _ app.LoadCartInput) (app.LoadCartResult, error) {
	return f.result, f.err
}

type fakeSubmitter struct {
	result app.SubmissionResult
	err    error
	input  *app.SubmitInput
}

func (f *fakeSubmitter) Submit(_ context.Context, in app.SubmitInput) (app.SubmissionResult, error) {
	f.input = &in
	return f.result, f.err
}

type fakeProfileDirectory struct {
	identity *domain.Identity
	profiles []domain.SavedProfile
}

func (f *fakeProfileDirectory) FindByEmail(_ context.Context, _ string) (*domain.Identity, error) {
	return f.identity, nil
}

func (f *fakeProfileDirectory) ListProfiles(_ context.Context, _ string) ([]domain.SavedProfile, error) {
	return f.profiles, nil
}

func newTestHandler(cart *fakeCartLoader, submitter *fakeSubmitter, profiles *fakeProfileDirectory) (*CheckoutHandler, *checkout.Store) {
	store := checkout.NewStore()
	engine := pricing.NewEngine(decimal.NewFromInt(5))
	clk := clock.NewFixed(time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
	return NewCheckoutHandler(store, cart, submitter, profiles, engine, clk), store
}

func serveCheckout(h *CheckoutHandler, method, target, body string) *httptest.ResponseRecorder {
	router := NewRouter(RouterDeps{
		Checkout: h,
		Admin:    NewAdminHandler(nil),
		Logger:   log.New(io.Discard, "", 0),
	})
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func paidTicket(price string) domain.SelectedTicket {
	return domain.SelectedTicket{
		CategoryID:   "cat-10km",
		CategoryName: "10km",
		UnitPrice:    mustDecimal(price),
	}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateSession(t *testing.T) {
	t.Run("creates session from a valid cart", func(t *testing.T) {
		cart := &fakeCartLoader{result: app.LoadCartResult{Tickets: []domain.SelectedTicket{paidTicket("100.00")}}}
		h, _ := newTestHandler(cart, &fakeSubmitter{}, &fakeProfileDirectory{})

		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions",
			`{"event_id":"event-1","batch_id":"batch-1","quantities":{"cat-10km":1}}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var view struct {
			ID      string `json:"id"`
			Status  string `json:"status"`
			Pricing struct {
				Total string `json:"total"`
			} `json:"pricing"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if view.ID == "" || view.Status != "active" {
			t.Fatalf("unexpected session view: %+v", view)
		}
		if view.Pricing.Total != "105.00" {
			t.Fatalf("expected total 105.00, got %s", view.Pricing.Total)
		}
	})

	t.Run("maps closed batch to conflict", func(t *testing.T) {
		cart := &fakeCartLoader{err: domain.ErrBatchClosed}
		h, _ := newTestHandler(cart, &fakeSubmitter{}, &fakeProfileDirectory{})

		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions",
			`{"event_id":"event-1","batch_id":"batch-1","quantities":{"cat-10km":1}}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		var resp errorResponse
		_ = json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Code != codeBatchClosed {
			t.Fatalf("expected code %s, got %s", codeBatchClosed, resp.Code)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		h, _ := newTestHandler(&fakeCartLoader{}, &fakeSubmitter{}, &fakeProfileDirectory{})
		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions", `{"nope":true}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestUpdateField(t *testing.T) {
	h, store := newTestHandler(&fakeCartLoader{}, &fakeSubmitter{}, &fakeProfileDirectory{})
	session := checkout.NewSession("sess-1", "event-1", "batch-1",
		[]domain.SelectedTicket{paidTicket("100.00")}, nil, nil, time.Now())
	store.Put(session)

	t.Run("updates a participant field", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPatch, "/checkout/sessions/sess-1/participants/0",
			`{"field":"full_name","value":"Ana Souza"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("toggles the save profile flag", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPatch, "/checkout/sessions/sess-1/participants/0",
			`{"field":"save_profile","value":"true"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		_, roster := session.Snapshot()
		if !roster[0].SaveProfile {
			t.Fatal("expected save profile flag set")
		}
	})

	t.Run("rejects a non-boolean save profile value", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPatch, "/checkout/sessions/sess-1/participants/0",
			`{"field":"save_profile","value":"yes please"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPatch, "/checkout/sessions/sess-1/participants/0",
			`{"field":"favorite_color","value":"blue"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown session", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPatch, "/checkout/sessions/missing/participants/0",
			`{"field":"full_name","value":"x"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestReplaceParticipants(t *testing.T) {
	h, store := newTestHandler(&fakeCartLoader{}, &fakeSubmitter{}, &fakeProfileDirectory{})
	session := checkout.NewSession("sess-7", "event-1", "batch-1",
		[]domain.SelectedTicket{paidTicket("100.00")}, nil, nil, time.Now())
	store.Put(session)

	t.Run("replaces the roster and normalizes documents", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPut, "/checkout/sessions/sess-7/participants",
			`{"participants":[{"full_name":"Ana Souza","email":"ana@example.com","country":"BR","document":"529.982.247-25"}]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		_, roster := session.Snapshot()
		if roster[0].Document != "52998224725" {
			t.Fatalf("expected normalized document, got %q", roster[0].Document)
		}
	})

	t.Run("rejects a length mismatch", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPut, "/checkout/sessions/sess-7/participants",
			`{"participants":[]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNextReturnsValidation(t *testing.T) {
	h, store := newTestHandler(&fakeCartLoader{}, &fakeSubmitter{}, &fakeProfileDirectory{})
	session := checkout.NewSession("sess-2", "event-1", "batch-1",
		[]domain.SelectedTicket{paidTicket("100.00")}, nil, nil, time.Now())
	store.Put(session)

	rec := serveCheckout(h, http.MethodPost, "/checkout/sessions/sess-2/next", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Outcome    string `json:"outcome"`
		Validation *struct {
			Field string `json:"field"`
			Code  string `json:"code"`
		} `json:"validation"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Outcome != "stay" {
		t.Fatalf("expected outcome stay, got %s", resp.Outcome)
	}
	if resp.Validation == nil || resp.Validation.Field != "full_name" {
		t.Fatalf("expected full_name validation failure, got %+v", resp.Validation)
	}
}

func TestSubmit(t *testing.T) {
	newReadySession := func(t *testing.T, id string, store *checkout.Store) *checkout.Session {
		t.Helper()
		session := checkout.NewSession(id, "event-1", "batch-1",
			[]domain.SelectedTicket{paidTicket("100.00")}, nil, nil, time.Now())
		store.Put(session)
		fillParticipant(t, session)
		if _, err := session.DeclineOffer(); err != nil {
			t.Fatalf("decline offer: %v", err)
		}
		return session
	}

	t.Run("submits a snapshot and locks the session", func(t *testing.T) {
		submitter := &fakeSubmitter{result: app.SubmissionResult{
			RegistrationNumbers: []string{"EVM-2026-ABCD1234"},
			Registrations: []domain.RegistrationRecord{
				{ID: "reg-1", Number: "EVM-2026-ABCD1234", Status: domain.RegistrationPending},
			},
		}}
		h, store := newTestHandler(&fakeCartLoader{}, submitter, &fakeProfileDirectory{})
		session := newReadySession(t, "sess-3", store)

		req := httptest.NewRequest(http.MethodPost, "/checkout/sessions/sess-3/submit", nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
		req.RemoteAddr = "203.0.113.9:51234"
		rec := httptest.NewRecorder()
		NewRouter(RouterDeps{Checkout: h, Admin: NewAdminHandler(nil), Logger: log.New(io.Discard, "", 0)}).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if submitter.input == nil {
			t.Fatal("expected Submit to be called")
		}
		if submitter.input.RequestIP != "203.0.113.9" {
			t.Fatalf("expected client ip forwarded, got %q", submitter.input.RequestIP)
		}
		if submitter.input.UserAgent != "Mozilla/5.0 (iPhone)" {
			t.Fatalf("expected user agent forwarded, got %q", submitter.input.UserAgent)
		}
		if session.Status() != checkout.StatusSubmitted {
			t.Fatalf("expected session locked after submit, got %v", session.Status())
		}
	})

	t.Run("maps exhausted inventory to conflict and keeps session retryable", func(t *testing.T) {
		submitter := &fakeSubmitter{err: domain.ErrInventoryExhausted}
		h, store := newTestHandler(&fakeCartLoader{}, submitter, &fakeProfileDirectory{})
		session := newReadySession(t, "sess-4", store)

		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions/sess-4/submit", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if session.Status() != checkout.StatusSubmissionFailed {
			t.Fatalf("expected retryable session, got %v", session.Status())
		}
	})

	t.Run("rejects a second submit", func(t *testing.T) {
		submitter := &fakeSubmitter{result: app.SubmissionResult{RegistrationNumbers: []string{"EVM-2026-AAAA0000"}}}
		h, store := newTestHandler(&fakeCartLoader{}, submitter, &fakeProfileDirectory{})
		newReadySession(t, "sess-5", store)

		if rec := serveCheckout(h, http.MethodPost, "/checkout/sessions/sess-5/submit", ""); rec.Code != http.StatusCreated {
			t.Fatalf("first submit: expected 201, got %d", rec.Code)
		}
		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions/sess-5/submit", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("second submit: expected 409, got %d", rec.Code)
		}
		var resp errorResponse
		_ = json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Code != codeSessionLocked {
			t.Fatalf("expected code %s, got %s", codeSessionLocked, resp.Code)
		}
	})

	t.Run("rejects a session that never passed the wizard", func(t *testing.T) {
		submitter := &fakeSubmitter{}
		h, store := newTestHandler(&fakeCartLoader{}, submitter, &fakeProfileDirectory{})
		store.Put(checkout.NewSession("sess-8", "event-1", "batch-1",
			[]domain.SelectedTicket{paidTicket("100.00")}, nil, nil, time.Now()))

		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions/sess-8/submit", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		_ = json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Code != codeNotReadyToSubmit {
			t.Fatalf("expected code %s, got %s", codeNotReadyToSubmit, resp.Code)
		}
		if submitter.input != nil {
			t.Fatal("pipeline must not run for an unvalidated session")
		}
	})

	t.Run("an edit after the last step reopens validation", func(t *testing.T) {
		submitter := &fakeSubmitter{}
		h, store := newTestHandler(&fakeCartLoader{}, submitter, &fakeProfileDirectory{})
		newReadySession(t, "sess-9", store)

		if rec := serveCheckout(h, http.MethodPatch, "/checkout/sessions/sess-9/participants/0",
			`{"field":"email","value":"broken@"}`); rec.Code != http.StatusOK {
			t.Fatalf("edit: expected 200, got %d", rec.Code)
		}
		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions/sess-9/submit", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 after post-validation edit, got %d", rec.Code)
		}
		if submitter.input != nil {
			t.Fatal("pipeline must not run after a post-validation edit")
		}
	})
}

func TestProfileOfferFlow(t *testing.T) {
	profiles := &fakeProfileDirectory{
		identity: &domain.Identity{ID: "id-1", Email: "ana@example.com"},
		profiles: []domain.SavedProfile{
			{ID: "prof-1", IdentityID: "id-1", Participant: domain.Participant{FullName: "Bia Souza", Document: "11144477735"}},
		},
	}
	h, store := newTestHandler(&fakeCartLoader{}, &fakeSubmitter{}, profiles)

	session := checkout.NewSession("sess-6", "event-1", "batch-1",
		[]domain.SelectedTicket{paidTicket("100.00")}, nil, nil, time.Now())
	store.Put(session)
	// Drive the session into the offer state directly.
	fillParticipant(t, session)

	t.Run("lists saved profiles", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodGet, "/checkout/sessions/sess-6/profiles?email=ana@example.com", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var list []profileView
		if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(list) != 1 || list[0].ID != "prof-1" {
			t.Fatalf("unexpected profiles: %+v", list)
		}
	})

	t.Run("adds a companion from a saved profile", func(t *testing.T) {
		rec := serveCheckout(h, http.MethodPost, "/checkout/sessions/sess-6/profiles",
			`{"email":"ana@example.com","profile_id":"prof-1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := len(session.Tickets()); got != 2 {
			t.Fatalf("expected 2 tickets after companion insert, got %d", got)
		}
		state := session.State()
		if state.Participant != 1 || state.Step != checkout.StepPersonalData {
			t.Fatalf("expected wizard on new participant, got %+v", state)
		}
	})
}

// fillParticipant walks participant 0 through all three steps so a
// single-ticket session reaches the profile offer.
func fillParticipant(t *testing.T, session *checkout.Session) {
	t.Helper()
	// Country before document: a country change clears the document.
	fields := []struct {
		field checkout.Field
		value string
	}{
		{checkout.FieldFullName, "Ana Souza"},
		{checkout.FieldEmail, "ana@example.com"},
		{checkout.FieldPhone, "+55 11 98888-7777"},
		{checkout.FieldAge, "29"},
		{checkout.FieldGender, "F"},
		{checkout.FieldCountry, "BR"},
		{checkout.FieldDocument, "529.982.247-25"},
		{checkout.FieldStreet, "Rua A"},
		{checkout.FieldNumber, "10"},
		{checkout.FieldNeighborhood, "Centro"},
		{checkout.FieldCity, "São Paulo"},
		{checkout.FieldState, "SP"},
		{checkout.FieldPostalCode, "01000-000"},
		{checkout.FieldWaiverAccepted, "true"},
	}
	for _, f := range fields {
		if err := session.UpdateField(0, f.field, f.value); err != nil {
			t.Fatalf("update %s: %v", f.field, err)
		}
	}
	if err := session.SetPaymentMethod("pix"); err != nil {
		t.Fatalf("set payment method: %v", err)
	}
	for i := 0; i < 3; i++ {
		outcome, verr, err := session.Next()
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if verr != nil {
			t.Fatalf("next %d: unexpected validation failure %+v", i, verr)
		}
		if i == 2 && outcome != checkout.OutcomeOfferProfiles {
			t.Fatalf("expected profile offer after last step, got %v", outcome)
		}
	}
}
