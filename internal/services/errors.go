package services

import "errors"

// Errors surfaced by the PTO lifecycle. Handlers map them to status codes.
var (
	ErrRequestNotFound     = errors.New("PTO request not found")
	ErrActorNotFound       = errors.New("acting user not found")
	ErrForbidden           = errors.New("not authorized to act on this request")
	ErrInvalidState        = errors.New("only pending requests can be changed")
	ErrInsufficientBalance = errors.New("not enough PTO balance")
	ErrInvalidRange        = errors.New("start date must be before end date")
	ErrPastStartDate       = errors.New("cannot create PTO request for past dates")
	ErrInvalidStatus       = errors.New("status must be APPROVED or DENIED")
	ErrNotesTooLong        = errors.New("notes are too long")
	ErrAccountPending      = errors.New("account pending approval")

	// ErrOperationFailed hides unexpected persistence failures from callers;
	// the cause is logged where it happens.
	ErrOperationFailed = errors.New("operation failed")
)
