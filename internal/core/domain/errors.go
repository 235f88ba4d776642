package domain

import (
	"errors"
	"fmt"
)

// Denial kinds. None of these are faults: each ends up as allowed=false with
// a human readable reason.
var (
	ErrMalformedRequest   = errors.New("malformed admission request")
	ErrUnknownStreamer    = errors.New("unknown streamer")
	ErrInvalidKey         = errors.New("invalid key")
	ErrMissingRoomSegment = errors.New("missing room segment")
	ErrNoRoomGrants       = errors.New("no room grants for streamer")
	ErrRoomNotGranted     = errors.New("room not granted")
)

// DenialError carries the diagnostic reason sent back to the media server
// together with the kind it belongs to.
type DenialError struct {
	Kind   error
	Reason string
}

func (e *DenialError) Error() string {
	return e.Reason
}

func (e *DenialError) Unwrap() error {
	return e.Kind
}

// Deny builds a DenialError of the given kind.
func Deny(kind error, format string, args ...interface{}) *DenialError {
	return &DenialError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// DenialLabel maps an error to a short, bounded label for metrics and logs.
func DenialLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMalformedRequest):
		return "malformed_request"
	case errors.Is(err, ErrUnknownStreamer):
		return "unknown_streamer"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, ErrMissingRoomSegment):
		return "missing_room_segment"
	case errors.Is(err, ErrNoRoomGrants):
		return "no_room_grants"
	case errors.Is(err, ErrRoomNotGranted):
		return "room_not_granted"
	default:
		return "other"
	}
}
