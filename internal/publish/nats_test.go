package publish

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technosupport/mxtools/internal/batch"
)

type fakeConn struct {
	mu       sync.Mutex
	failures int
	subjects []string
	payloads [][]byte
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("nats: connection closed")
	}
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func newTestPublisher(conn Conn, retries int) *NATSPublisher {
	p := NewNATSPublisher(conn, "", retries, nil)
	p.backoff = 0
	return p
}

func TestPublishEncodesResult(t *testing.T) {
	conn := &fakeConn{}
	p := newTestPublisher(conn, 0)

	err := p.Publish(batch.Result{Tool: "mxbackup", Device: "10.0.0.1", Kind: batch.KindOK, Message: "backup succeeded"})
	require.NoError(t, err)

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "mx.results.mxbackup", conn.subjects[0])

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, "10.0.0.1", got["device"])
	assert.Equal(t, "ok", got["kind"])
}

func TestPublishRetries(t *testing.T) {
	conn := &fakeConn{failures: 2}
	p := newTestPublisher(conn, 2)

	require.NoError(t, p.Publish(batch.Result{Tool: "mxmic"}))
	assert.Len(t, conn.subjects, 1)
}

func TestPublishGivesUp(t *testing.T) {
	conn := &fakeConn{failures: 5}
	p := newTestPublisher(conn, 1)

	err := p.Publish(batch.Result{Tool: "mxmic"})
	assert.ErrorContains(t, err, "publish failed after 1 retries")
	assert.Empty(t, conn.subjects)
}

func TestObserveSwallowsErrors(t *testing.T) {
	conn := &fakeConn{failures: 1}
	p := newTestPublisher(conn, 0)

	assert.NotPanics(t, func() { p.Observe(batch.Result{Tool: "mxapi"}) })
	assert.Empty(t, conn.subjects)
}

func TestSubject(t *testing.T) {
	p := NewNATSPublisher(&fakeConn{}, "site.a", 0, nil)
	assert.Equal(t, "site.a.mxpgm", p.Subject("mxpgm"))
	assert.Equal(t, "site.a", p.Subject(""))
}
