package clinic

import "errors"

var (
	// ErrMalformedContent is returned when reference content cannot be
	// turned into a skin condition.
	ErrMalformedContent = errors.New("malformed content")

	ErrUnknownZone          = errors.New("unknown zone")
	ErrUnknownConditionType = errors.New("unknown condition type")
)
