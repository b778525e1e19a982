package rates

import "errors"

var (
	// ErrNotFound reports a currency code with no registry entry.
	ErrNotFound = errors.New("currency not found")

	// ErrInvalidRate reports a zero or negative rate.
	ErrInvalidRate = errors.New("rate must be positive")

	// ErrEmptyCode reports a currency constructed without a code.
	ErrEmptyCode = errors.New("empty currency code")
)
