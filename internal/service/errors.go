package service

import "errors"

// Error kinds surfaced to handlers. Each maps to a distinct HTTP status so
// callers can tell bad input, missing rows, denied access and conflicts apart.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidPassword = errors.New("join password does not match")
	ErrAlreadyMember   = errors.New("already an active member")
	ErrRejoinDenied    = errors.New("rejoining is not allowed")
	ErrLastAdmin       = errors.New("cannot remove the last active admin")
)
