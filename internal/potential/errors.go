package potential

import "errors"

var (
	// ErrUnknownKind indicates a potential kind with no registered field.
	ErrUnknownKind = errors.New("potential: unknown kind")

	// ErrMalformed indicates a sample file that could not be parsed.
	ErrMalformed = errors.New("potential: malformed sample file")

	// ErrRange indicates interpolation bounds that do not form an interval.
	ErrRange = errors.New("potential: invalid interpolation range")
)
