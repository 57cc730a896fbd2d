// Package domain holds the error taxonomy shared by every layer.
// Errors are package-level sentinels matched with errors.Is so callers
// can branch exhaustively without depending on concrete types.
package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced account or ledger entry
	// does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEmail is returned when registration is attempted with
	// an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateNumber is returned by the account store when a freshly
	// generated account number collides with an existing one. The account
	// service retries generation on this error; it never reaches callers.
	ErrDuplicateNumber = errors.New("account number already taken")

	// ErrDuplicateKey is returned by stores that detect a unique-index
	// violation but cannot tell which index fired. Postgres aborts the
	// transaction on the violation, so the store must not issue further
	// queries to find out; the account service disambiguates in a fresh
	// transaction.
	ErrDuplicateKey = errors.New("duplicate record")

	// ErrInvalidAmount is returned when a monetary amount is not strictly
	// positive or cannot be represented at the ledger scale.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when a debit exceeds the available
	// balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount is returned when a transfer source and destination
	// resolve to the same account.
	ErrSameAccount = errors.New("cannot transfer to same account")

	// ErrConcurrencyConflict is returned when an optimistic version check
	// fails on save. Unlike domain errors the correct response is to retry
	// the whole read-modify-write sequence.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrInvalidCredentials is returned on login with a wrong email or a
	// wrong password. The two cases are deliberately indistinguishable to
	// prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreFailure wraps persistence-layer failures that are neither
	// conflicts nor missing rows.
	ErrStoreFailure = errors.New("store failure")
)
