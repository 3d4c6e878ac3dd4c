package auth

import "errors"

var (
	// ErrPINMismatch is returned both for a wrong PIN and for an unknown
	// identity, so a caller can never probe whether an identity exists.
	ErrPINMismatch  = errors.New("pin verification failed")
	ErrNoToken      = errors.New("no token present")
	ErrBadToken     = errors.New("token invalid or expired")
	ErrNoCredential = errors.New("credential not found")
)
