package services

import "errors"

// Sentinel errors for state and validation failures. Handlers map these to
// HTTP status codes with errors.Is; everything else is a persistence error
// and surfaces as a 500.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrJourneyNotFound  = errors.New("journey not found")
	ErrCheckInNotFound  = errors.New("check-in not found")
	ErrJourneyCompleted = errors.New("cannot modify a completed journey")
	ErrJourneyPaused    = errors.New("journey is paused")
	ErrDuplicateCheckIn = errors.New("already checked in for this date")
	ErrValidation       = errors.New("invalid input")
)
