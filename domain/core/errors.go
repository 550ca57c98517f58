package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrScheduleNotFound = fmt.Errorf("%w: reinforcement schedule", ErrNotFound)
	ErrWalkNotFound     = fmt.Errorf("%w: reward walk", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("%w: session", ErrNotFound)

	// Validation errors
	ErrEmptyParticipantID = errors.New("participant id is empty")
	ErrEmptyTable         = errors.New("reward walk table is empty")
	ErrProbabilityRange   = errors.New("win probability outside [0,1]")
	ErrPayoffValue        = errors.New("payoff must be 0 or 1")
	ErrScheduleFlag       = errors.New("schedule flag must be 0 or 1")
	ErrInvalidArm         = errors.New("arm must be 0 or 1")
	ErrUnansweredItem     = errors.New("questionnaire item unanswered")

	// Trial flow outcomes
	ErrNoResponse     = errors.New("no response before deadline")
	ErrSessionAborted = errors.New("session aborted")

	// Analysis errors
	ErrNoTrials = errors.New("no trials recorded")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewTableRowError(row int, err error) error {
	return fmt.Errorf("reward walk row %d: %w", row, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyParticipantID) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrProbabilityRange) ||
		errors.Is(err, ErrPayoffValue) ||
		errors.Is(err, ErrScheduleFlag) ||
		errors.Is(err, ErrInvalidArm) ||
		errors.Is(err, ErrUnansweredItem)
}

func IsNoResponse(err error) bool {
	return errors.Is(err, ErrNoResponse)
}
