package domain

import "errors"

// Sentinel errors shared across use cases. The HTTP adapter maps these onto
// status codes; everything else is treated as an internal failure.
var (
	// ErrInvalidInput marks malformed caller input (bad scheme code,
	// non-positive units, malformed date). Computation is not attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoHoldings is returned when a user has no purchases at all.
	ErrNoHoldings = errors.New("no holdings found")

	// ErrNotFound marks a missing entity (fund, purchase to delete, user).
	ErrNotFound = errors.New("not found")

	// ErrSchemeNotFound is returned by the NAV provider when a scheme code
	// is unknown upstream.
	ErrSchemeNotFound = errors.New("scheme not found")

	// ErrProviderUnavailable is returned when the NAV provider cannot be
	// reached or answers with a server error. Engines recover from it
	// per scheme instead of failing the whole report.
	ErrProviderUnavailable = errors.New("nav provider unavailable")

	// ErrEmailTaken is returned on signup with an already registered email.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown user and wrong password so
	// the two cases are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTooManyAttempts is returned when login attempts exceed the window.
	ErrTooManyAttempts = errors.New("too many login attempts")
)
