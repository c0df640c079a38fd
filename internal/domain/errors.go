package domain

import "errors"

// Error kinds shared by every layer. Callers wrap them with fmt.Errorf("%w: ...")
// and transports classify them with errors.Is.
var (
	// ErrValidation marks missing or malformed input. Not retryable.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientBalance marks a debit larger than the account balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyProcessed marks an attempt to resolve a checkout request
	// that is already approved or rejected. Terminal, must not be retried.
	ErrAlreadyProcessed = errors.New("checkout already processed")

	// ErrStorage marks a failed store transaction. Nothing was applied,
	// so the caller may retry.
	ErrStorage = errors.New("storage error")
)
