// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Stable error codes returned by the election core. Every rejected
// operation carries one of these plus a human-readable reason.
const (
	CodePhaseViolation      = "phase_violation"
	CodeNotEligible         = "not_eligible"
	CodeStudentBlocked      = "student_blocked"
	CodeNotContinuing       = "not_continuing"
	CodeDuplicateSubmission = "duplicate_submission"
	CodeCapacityExceeded    = "capacity_exceeded"
	CodeInvalidCredential   = "invalid_credential"
	CodeInvalidCode         = "invalid_code"
	CodeInvalidInput        = "invalid_input"
	CodeNotFound            = "not_found"
	CodeAlreadyDecided      = "already_decided"
	CodeAlreadyResolved     = "already_resolved"
	CodeDependencyFailure   = "dependency_failure"
)

// Error is a domain-rule violation: an expected outcome returned to the
// caller, never a panic. Errors with the same code compare equal under
// errors.Is regardless of reason text.
type Error struct {
	Code   string
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Code
	}
	return e.Code + ": " + e.Reason
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrPhaseViolation      = &Error{Code: CodePhaseViolation}
	ErrNotEligible         = &Error{Code: CodeNotEligible}
	ErrStudentBlocked      = &Error{Code: CodeStudentBlocked}
	ErrNotContinuing       = &Error{Code: CodeNotContinuing}
	ErrDuplicateSubmission = &Error{Code: CodeDuplicateSubmission}
	ErrCapacityExceeded    = &Error{Code: CodeCapacityExceeded}
	ErrInvalidCredential   = &Error{Code: CodeInvalidCredential}
	ErrInvalidCode         = &Error{Code: CodeInvalidCode}
	ErrInvalidInput        = &Error{Code: CodeInvalidInput}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrAlreadyDecided      = &Error{Code: CodeAlreadyDecided}
	ErrAlreadyResolved     = &Error{Code: CodeAlreadyResolved}
)

func PhaseViolation(reason string) *Error {
	return &Error{Code: CodePhaseViolation, Reason: reason}
}

func NotEligible(reason string) *Error {
	return &Error{Code: CodeNotEligible, Reason: reason}
}

func StudentBlocked(reason string) *Error {
	return &Error{Code: CodeStudentBlocked, Reason: reason}
}

func NotContinuing(reason string) *Error {
	return &Error{Code: CodeNotContinuing, Reason: reason}
}

func DuplicateSubmission(reason string) *Error {
	return &Error{Code: CodeDuplicateSubmission, Reason: reason}
}

func CapacityExceeded(reason string) *Error {
	return &Error{Code: CodeCapacityExceeded, Reason: reason}
}

func InvalidCredential(reason string) *Error {
	return &Error{Code: CodeInvalidCredential, Reason: reason}
}

func InvalidCode(reason string) *Error {
	return &Error{Code: CodeInvalidCode, Reason: reason}
}

func InvalidInput(reason string) *Error {
	return &Error{Code: CodeInvalidInput, Reason: reason}
}

func NotFound(reason string) *Error {
	return &Error{Code: CodeNotFound, Reason: reason}
}

func AlreadyDecided(reason string) *Error {
	return &Error{Code: CodeAlreadyDecided, Reason: reason}
}

func AlreadyResolved(reason string) *Error {
	return &Error{Code: CodeAlreadyResolved, Reason: reason}
}
