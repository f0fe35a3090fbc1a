package auth

import "errors"

// The error taxonomy surfaced by the auth flow. Every failure leaving this
// package wraps one of these; the message is what the caller shows. All are
// recoverable and leave the flow in its prior state.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrChallengeRequired  = errors.New("please verify your email with the one-time passcode first")
	ErrExpired            = errors.New("one-time passcode has expired")
	ErrMismatch           = errors.New("invalid one-time passcode")
	ErrNotFound           = errors.New("no one-time passcode found for this email")
	ErrValidation         = errors.New("required fields are missing")
	ErrProvider           = errors.New("provider login failed")
	ErrDelivery           = errors.New("could not deliver the one-time passcode")
)
