package domain

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrBatchNotFound      = errors.New("batch not found")
	ErrBatchClosed        = errors.New("batch not open for sales")
	ErrCategoryNotInBatch = errors.New("category not in batch")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidID          = errors.New("invalid id")
	ErrEventNameRequired  = errors.New("event name required")
	ErrBatchNameRequired  = errors.New("batch name required")
	ErrCategoryRequired   = errors.New("category name required")
	ErrClubNameRequired   = errors.New("club name required")
	ErrNegativePrice      = errors.New("negative price")

	ErrClubNotFound     = errors.New("discount club not found")
	ErrClubExhausted    = errors.New("discount club allocation exhausted")
	ErrClubExpired      = errors.New("discount club deadline passed")
	ErrAffiliateInvalid = errors.New("invalid affiliate commission")

	ErrInventoryExhausted = errors.New("ticket inventory exhausted")
	ErrCartRosterMismatch = errors.New("roster does not match cart tickets")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrRegistrationFailed = errors.New("registration could not be persisted")
	ErrDuplicateDocument  = errors.New("athlete document already registered")
	ErrDuplicateNumber    = errors.New("registration number already taken")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrProfileNotFound    = errors.New("saved profile not found")

	ErrInvalidDocument = errors.New("invalid document")
)
