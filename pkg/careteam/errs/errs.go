// Package errs defines the failure taxonomy shared by the care-team managers.
// Every error is terminal for the current request; the HTTP layer translates
// kinds into status codes and never retries internally.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrForbidden means the actor lacks the required role or membership.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced group, membership, assignment,
	// patient or invitation does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyMember means a membership row already exists for the user.
	ErrAlreadyMember = errors.New("user is already a member")
	// ErrAlreadyAssigned means the patient is already assigned to the group.
	ErrAlreadyAssigned = errors.New("patient is already assigned")
	// ErrDuplicateInvitation means a pending invitation already exists for
	// the same group and email.
	ErrDuplicateInvitation = errors.New("a pending invitation already exists")
	// ErrCapacityExceeded means the group's member or patient limit is reached.
	ErrCapacityExceeded = errors.New("group capacity exceeded")
	// ErrExpired means the invitation passed its deadline before resolution.
	ErrExpired = errors.New("invitation has expired")
	// ErrAlreadyResolved means the invitation lost a concurrent race to a
	// terminal state.
	ErrAlreadyResolved = errors.New("invitation already resolved")
	// ErrRateLimited means the actor exceeded the invitation-response window.
	ErrRateLimited = errors.New("too many requests")
	// ErrLastAdmin means the operation would leave the group without an admin.
	ErrLastAdmin = errors.New("cannot remove the last admin")
)

// HTTPStatus maps a taxonomy error to the status code the API serves it with.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrAlreadyAssigned),
		errors.Is(err, ErrDuplicateInvitation),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrAlreadyResolved),
		errors.Is(err, ErrLastAdmin):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
