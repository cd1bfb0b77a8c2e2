// Package publish ships batch results to NATS for downstream consumers.
package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/technosupport/mxtools/internal/batch"
)

// DefaultSubject prefixes the tool name, e.g. mx.results.mxbackup.
const DefaultSubject = "mx.results"

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

type NATSPublisher struct {
	conn       Conn
	subject    string
	maxRetries int
	backoff    time.Duration
	log        *slog.Logger
}

func NewNATSPublisher(conn Conn, subject string, maxRetries int, log *slog.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = slog.Default()
	}
	return &NATSPublisher{
		conn:       conn,
		subject:    subject,
		maxRetries: maxRetries,
		backoff:    100 * time.Millisecond,
		log:        log,
	}
}

// Subject returns the subject results of tool are published on.
func (p *NATSPublisher) Subject(tool string) string {
	if tool == "" {
		return p.subject
	}
	return p.subject + "." + tool
}

func (p *NATSPublisher) Publish(r batch.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	subj := p.Subject(r.Tool)
	for i := 0; i <= p.maxRetries; i++ {
		err = p.conn.Publish(subj, data)
		if err == nil {
			return nil
		}

		// Backoff
		time.Sleep(time.Duration(i) * p.backoff)
	}

	return fmt.Errorf("publish failed after %d retries: %w", p.maxRetries, err)
}

// Observe publishes r. A failed publish is logged and never fails the device.
func (p *NATSPublisher) Observe(r batch.Result) {
	if err := p.Publish(r); err != nil {
		p.log.Warn("result not published", "device", r.Device, "subject", p.Subject(r.Tool), "err", err)
	}
}

// Connect dials url with a client name identifying the tool.
func Connect(url, tool string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(tool),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}
