package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/app"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// AdminService is the organizer-side catalog surface the handlers need.
type AdminService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateBatch(ctx context.Context, in app.CreateBatchInput) (domain.Batch, error)
	ListBatches(ctx context.Context, eventID string) ([]domain.Batch, error)
	CreateCategory(ctx context.Context, in app.CreateCategoryInput) (domain.TicketCategory, error)
	CreateClub(ctx context.Context, in app.CreateClubInput) (domain.DiscountClub, error)
}

// AdminHandler exposes the catalog CRUD the checkout reads from.
type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type createEventRequest struct {
	Name     string `json:"name"`
	City     string `json:"city,omitempty"`
	StartsAt string `json:"starts_at,omitempty"`
}

type eventResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	City     string    `json:"city"`
	StartsAt time.Time `json:"starts_at"`
}

func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	var startsAt *time.Time
	if req.StartsAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "invalid starts_at format")
			return
		}
		startsAt = &parsed
	}

	event, err := h.svc.CreateEvent(r.Context(), app.CreateEventInput{
		Name:     req.Name,
		City:     req.City,
		StartsAt: startsAt,
	})
	if err != nil {
		switch err {
		case domain.ErrEventNameRequired:
			writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, eventView(event))
}

func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, eventView(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func eventView(e domain.Event) eventResponse {
	return eventResponse{ID: e.ID, Name: e.Name, City: e.City, StartsAt: e.StartsAt}
}

type createBatchRequest struct {
	Name    string    `json:"name"`
	OpensAt time.Time `json:"opens_at"`
	EndsAt  time.Time `json:"ends_at"`
}

type batchResponse struct {
	ID      string    `json:"id"`
	EventID string    `json:"event_id"`
	Name    string    `json:"name"`
	OpensAt time.Time `json:"opens_at"`
	EndsAt  time.Time `json:"ends_at"`
}

func (h *AdminHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	batch, err := h.svc.CreateBatch(r.Context(), app.CreateBatchInput{
		EventID: chi.URLParam(r, "eventID"),
		Name:    req.Name,
		OpensAt: req.OpensAt,
		EndsAt:  req.EndsAt,
	})
	if err != nil {
		switch err {
		case domain.ErrBatchNameRequired:
			writeError(w, http.StatusBadRequest, codeBatchNameRequired, err.Error())
		case domain.ErrEventNotFound:
			writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, batchView(batch))
}

func (h *AdminHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.svc.ListBatches(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		switch err {
		case domain.ErrInvalidID:
			writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	resp := make([]batchResponse, 0, len(batches))
	for _, b := range batches {
		resp = append(resp, batchView(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func batchView(b domain.Batch) batchResponse {
	return batchResponse{ID: b.ID, EventID: b.EventID, Name: b.Name, OpensAt: b.OpensAt, EndsAt: b.EndsAt}
}

type createCategoryRequest struct {
	Name       string   `json:"name"`
	Price      string   `json:"price"`
	IsFree     bool     `json:"is_free"`
	HasKit     bool     `json:"has_kit"`
	KitItems   []string `json:"kit_items,omitempty"`
	ShirtSizes []string `json:"shirt_sizes,omitempty"`
	Quantity   *int     `json:"quantity,omitempty"`
}

type categoryResponse struct {
	ID         string   `json:"id"`
	BatchID    string   `json:"batch_id"`
	Name       string   `json:"name"`
	Price      string   `json:"price"`
	IsFree     bool     `json:"is_free"`
	HasKit     bool     `json:"has_kit"`
	KitItems   []string `json:"kit_items,omitempty"`
	ShirtSizes []string `json:"shirt_sizes,omitempty"`
	Quantity   *int     `json:"quantity,omitempty"`
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	price := decimal.Zero
	if req.Price != "" {
		parsed, err := decimal.NewFromString(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid price")
			return
		}
		price = parsed
	}

	category, err := h.svc.CreateCategory(r.Context(), app.CreateCategoryInput{
		BatchID:    chi.URLParam(r, "batchID"),
		Name:       req.Name,
		Price:      price,
		IsFree:     req.IsFree,
		HasKit:     req.HasKit,
		KitItems:   req.KitItems,
		ShirtSizes: req.ShirtSizes,
		Quantity:   req.Quantity,
	})
	if err != nil {
		switch err {
		case domain.ErrCategoryRequired:
			writeError(w, http.StatusBadRequest, codeCategoryRequired, err.Error())
		case domain.ErrNegativePrice:
			writeError(w, http.StatusBadRequest, codeNegativePrice, err.Error())
		case domain.ErrBatchNotFound:
			writeError(w, http.StatusNotFound, codeBatchNotFound, err.Error())
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{
		ID:         category.ID,
		BatchID:    category.BatchID,
		Name:       category.Name,
		Price:      category.Price.StringFixed(2),
		IsFree:     category.IsFree,
		HasKit:     category.HasKit,
		KitItems:   category.KitItems,
		ShirtSizes: category.ShirtSizes,
		Quantity:   category.Remaining,
	})
}

type createClubRequest struct {
	Name                 string    `json:"name"`
	BasePercent          string    `json:"base_percent"`
	ProgressiveThreshold int       `json:"progressive_threshold"`
	ProgressivePercent   string    `json:"progressive_percent"`
	Allocation           int       `json:"allocation"`
	Deadline             time.Time `json:"deadline"`
}

type clubResponse struct {
	ID                   string    `json:"id"`
	EventID              string    `json:"event_id"`
	Name                 string    `json:"name"`
	BasePercent          string    `json:"base_percent"`
	ProgressiveThreshold int       `json:"progressive_threshold"`
	ProgressivePercent   string    `json:"progressive_percent"`
	Allocation           int       `json:"allocation"`
	Deadline             time.Time `json:"deadline"`
}

func (h *AdminHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var req createClubRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	basePercent, err := decimal.NewFromString(req.BasePercent)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid base_percent")
		return
	}
	progressivePercent := decimal.Zero
	if req.ProgressivePercent != "" {
		progressivePercent, err = decimal.NewFromString(req.ProgressivePercent)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid progressive_percent")
			return
		}
	}

	club, err := h.svc.CreateClub(r.Context(), app.CreateClubInput{
		EventID:              chi.URLParam(r, "eventID"),
		Name:                 req.Name,
		BasePercent:          basePercent,
		ProgressiveThreshold: req.ProgressiveThreshold,
		ProgressivePercent:   progressivePercent,
		Allocation:           req.Allocation,
		Deadline:             req.Deadline,
	})
	if err != nil {
		switch err {
		case domain.ErrClubNameRequired:
			writeError(w, http.StatusBadRequest, codeClubNameRequired, err.Error())
		case domain.ErrEventNotFound:
			writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, clubResponse{
		ID:                   club.ID,
		EventID:              club.EventID,
		Name:                 club.Name,
		BasePercent:          club.BasePercent.StringFixed(2),
		ProgressiveThreshold: club.ProgressiveThreshold,
		ProgressivePercent:   club.ProgressivePercent.StringFixed(2),
		Allocation:           club.Allocation,
		Deadline:             club.Deadline,
	})
}
