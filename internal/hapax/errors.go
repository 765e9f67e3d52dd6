package hapax

import "errors"

var (
	// ErrInvalidChannel indicates a MIDI channel outside 1-16.
	ErrInvalidChannel = errors.New("invalid midi channel")

	// ErrWrongKind indicates a track record of the wrong kind for the
	// requested definition type.
	ErrWrongKind = errors.New("wrong track kind")
)
