package mobotix

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNotMobotix is returned when a remoteconfig response lacks the #read:: marker.
var ErrNotMobotix = errors.New("unexpected response, are you sure this is Mobotix?")

// ErrNoVersion is returned when a timestamp section carries no VERSION= line.
var ErrNoVersion = errors.New("device did not report a VERSION")

// Transport failure reasons.
const (
	ReasonConnect = "unable to connect"
	ReasonTimeout = "timeout"
	ReasonOther   = "request failed"
)

// TransportError wraps a failure to complete the HTTP exchange.
type TransportError struct {
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a completed exchange with a non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http response code: %d %s", e.Code, http.StatusText(e.Code))
}

func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TransportError{Reason: ReasonTimeout, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &TransportError{Reason: ReasonConnect, Err: err}
	}
	return &TransportError{Reason: ReasonOther, Err: err}
}

// IsTransport reports whether err is a transport or HTTP status failure.
func IsTransport(err error) bool {
	var te *TransportError
	var se *StatusError
	return errors.As(err, &te) || errors.As(err, &se)
}

// IsProtocol reports whether the camera answered but not as expected.
func IsProtocol(err error) bool {
	return errors.Is(err, ErrNotMobotix) || errors.Is(err, ErrNoVersion)
}
