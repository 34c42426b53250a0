package markup

import "errors"

var (
	// ErrUnknownRule is returned when a converter is configured with a rule
	// name that does not exist.
	ErrUnknownRule = errors.New("markup: unknown rule")
	// ErrInvalidTimeout is returned for negative match timeouts.
	ErrInvalidTimeout = errors.New("markup: match timeout must be zero or positive")
)
