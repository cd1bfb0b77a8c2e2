package batch

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies the outcome of one device operation.
type Kind string

const (
	KindOK        Kind = "ok"
	KindTransport Kind = "transport"
	KindProtocol  Kind = "protocol"
	KindLocalIO   Kind = "local_io"
	KindSkipped   Kind = "skipped"
)

// Result is the typed outcome for one device. Presentation is left to observers.
type Result struct {
	RunID    uuid.UUID     `json:"run_id"`
	Tool     string        `json:"tool"`
	Index    int           `json:"index"`
	Device   string        `json:"device"`
	Kind     Kind          `json:"kind"`
	Message  string        `json:"message"`
	Detail   string        `json:"detail,omitempty"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	// Abort stops the driver from dispatching any further device.
	Abort bool `json:"abort,omitempty"`
}

// OK builds a successful result.
func OK(msg string) Result {
	return Result{Kind: KindOK, Message: msg}
}

// Fail builds a failed result of the given kind.
func Fail(kind Kind, err error, msg string) Result {
	return Result{Kind: kind, Err: err, Message: msg}
}

// Skip builds a result for a device that was deliberately left untouched.
func Skip(msg string) Result {
	return Result{Kind: KindSkipped, Message: msg}
}

// Failed reports whether the result is an error outcome.
func (r Result) Failed() bool {
	return r.Kind != KindOK && r.Kind != KindSkipped
}

// Report collects every result of a run in device-list order.
type Report struct {
	RunID    uuid.UUID
	Tool     string
	Results  []Result
	Disabled int
	Aborted  bool
	Elapsed  time.Duration
}

// Count returns the number of results of kind k.
func (r Report) Count(k Kind) int {
	n := 0
	for _, res := range r.Results {
		if res.Kind == k {
			n++
		}
	}
	return n
}

// Failures returns the number of failed devices.
func (r Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}
