package state

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is matched by every ProtocolError.
var ErrInvalidResponse = errors.New("invalid response")

// FormatError reports a value (pid, prefix, service) that could not be parsed from text.
type FormatError struct {
	Kind   string
	Text   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Text, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response that does not follow the wire grammar.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidResponse.Error(), e.Reason)
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrInvalidResponse
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransportError reports a failure to move bytes over the channel.
type TransportError struct {
	Op       string // open, write, read or close
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BadStatusError reports a non-2xx response. No body is decoded when it is returned.
type BadStatusError struct {
	Endpoint string
	Code     int
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("portal %s returned status %d", e.Endpoint, e.Code)
}

func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the status carried by a BadStatusError in err's chain, or 0.
func StatusCode(err error) int {
	var se *BadStatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
