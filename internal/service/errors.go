// Package service implements business logic, validation, authorization,
// and orchestration between HTTP handlers and the repository layer.
//
// Every operation that mutates or reads protected state takes an explicit
// auth.Caller; nothing is read from ambient request state.
package service

import (
	"errors"
	"fmt"

	"quicket/internal/auth"
)

// ErrForbidden is returned when the caller is authenticated but lacks
// ownership of the resource or the admin role.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials is returned on login with an unknown username or
// a wrong password, without distinguishing which.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// requireSelfOrAdmin allows the resource owner and admins through.
func requireSelfOrAdmin(caller auth.Caller, ownerID string) error {
	if caller.UserID != ownerID && !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// requireAdmin allows only admins through.
func requireAdmin(caller auth.Caller) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
