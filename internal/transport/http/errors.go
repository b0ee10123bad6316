package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidStartsAt    = "invalid_starts_at"
	codeInvalidID          = "invalid_id"
	codeEventNameRequired  = "event_name_required"
	codeBatchNameRequired  = "batch_name_required"
	codeCategoryRequired   = "category_name_required"
	codeClubNameRequired   = "club_name_required"
	codeNegativePrice      = "negative_price"
	codeInvalidQuantity    = "invalid_quantity"
	codeBatchClosed        = "batch_closed"
	codeBatchNotFound      = "batch_not_found"
	codeEventNotFound      = "event_not_found"
	codeCategoryNotInBatch = "category_not_in_batch"
	codeClubNotFound       = "club_not_found"
	codeClubExhausted      = "club_exhausted"
	codeClubExpired        = "club_expired"
	codeAffiliateInvalid   = "affiliate_invalid"
	codeSessionNotFound    = "session_not_found"
	codeSessionLocked      = "session_locked"
	codeOfferPending       = "offer_pending"
	codeNoOffer            = "no_offer"
	codeAtFirstStep        = "at_first_step"
	codeNotReadyToSubmit   = "not_ready_to_submit"
	codeValidationFailed   = "validation_failed"
	codeInvalidField       = "invalid_field"
	codeInventoryExhausted = "inventory_exhausted"
	codeCatalogUnavailable = "catalog_unavailable"
	codeRegistrationFailed = "registration_failed"
	codeIdentityNotFound   = "identity_not_found"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
