package batch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technosupport/mxtools/internal/devicelist"
	"github.com/technosupport/mxtools/internal/template"
)

func mustParse(t *testing.T, s string) *devicelist.List {
	t.Helper()
	l, err := devicelist.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return l
}

type recorder struct {
	mu    sync.Mutex
	hosts []string
}

func (r *recorder) task(fn func(dev Device) Result) Task {
	return TaskFunc(func(ctx context.Context, dev Device) Result {
		r.mu.Lock()
		r.hosts = append(r.hosts, dev.Host)
		r.mu.Unlock()
		if fn != nil {
			return fn(dev)
		}
		return OK("done")
	})
}

func TestDisabledRowsNeverRun(t *testing.T) {
	l := mustParse(t, "IP;NAME\n1.2.3.4;cam1\n#5.6.7.8;cam2\n")
	rec := &recorder{}

	var rendered string
	rep := NewDriver(Config{Tool: "test"}).Run(context.Background(), l, rec.task(func(dev Device) Result {
		rendered = template.Substitute("set name {NAME}", dev.Placeholders)
		return OK("programmed")
	}))

	assert.Equal(t, []string{"1.2.3.4"}, rec.hosts)
	assert.Equal(t, "set name cam1", rendered)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, 1, rep.Disabled)
	assert.Equal(t, KindOK, rep.Results[0].Kind)
	assert.Equal(t, "1.2.3.4", rep.Results[0].Device)
	assert.Equal(t, rep.RunID, rep.Results[0].RunID)
	assert.Equal(t, "test", rep.Results[0].Tool)
}

func TestFailureDoesNotAbortBatch(t *testing.T) {
	l := mustParse(t, "IP\n10.0.0.1\n10.0.0.2\n10.0.0.3\n")
	rec := &recorder{}

	rep := NewDriver(Config{}).Run(context.Background(), l, rec.task(func(dev Device) Result {
		if dev.Host == "10.0.0.2" {
			return Fail(KindTransport, errors.New("timeout"), "failed")
		}
		return OK("ok")
	}))

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, rec.hosts)
	assert.Equal(t, 2, rep.Count(KindOK))
	assert.Equal(t, 1, rep.Failures())
	assert.Equal(t, "timeout", rep.Results[1].Error)
}

func TestAbortStopsDispatch(t *testing.T) {
	l := mustParse(t, "IP\n10.0.0.1\n10.0.0.2\n10.0.0.3\n")
	rec := &recorder{}

	rep := NewDriver(Config{}).Run(context.Background(), l, rec.task(func(dev Device) Result {
		if dev.Host == "10.0.0.2" {
			r := Fail(KindLocalIO, errors.New("disk full"), "unable to write output")
			r.Abort = true
			return r
		}
		return OK("ok")
	}))

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, rec.hosts)
	assert.True(t, rep.Aborted)
	assert.Len(t, rep.Results, 2)
}

func TestKindDefaults(t *testing.T) {
	l := mustParse(t, "IP\n10.0.0.1\n10.0.0.2\n")
	rep := NewDriver(Config{}).Run(context.Background(), l, TaskFunc(func(ctx context.Context, dev Device) Result {
		if dev.Index == 1 {
			return Result{Message: "fine"}
		}
		return Result{Err: errors.New("boom")}
	}))
	assert.Equal(t, KindOK, rep.Results[0].Kind)
	assert.Equal(t, KindTransport, rep.Results[1].Kind)
}

func TestPoolPreservesOrderAndBound(t *testing.T) {
	var b strings.Builder
	b.WriteString("IP\n")
	hosts := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5", "10.0.0.6"}
	for _, h := range hosts {
		b.WriteString(h + "\n")
	}
	l := mustParse(t, b.String())

	var inflight, peak atomic.Int32
	var observed []string
	obs := ObserverFunc(func(r Result) { observed = append(observed, r.Device) })

	rep := NewDriver(Config{Workers: 3}, obs).Run(context.Background(), l, TaskFunc(func(ctx context.Context, dev Device) Result {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		// later devices finish first
		time.Sleep(time.Duration(len(hosts)-dev.Index) * 10 * time.Millisecond)
		inflight.Add(-1)
		return OK("ok")
	}))

	assert.Equal(t, hosts, observed)
	require.Len(t, rep.Results, len(hosts))
	for i, r := range rep.Results {
		assert.Equal(t, hosts[i], r.Device)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestCancelledContext(t *testing.T) {
	l := mustParse(t, "IP\n10.0.0.1\n10.0.0.2\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	rep := NewDriver(Config{}).Run(ctx, l, rec.task(nil))
	assert.Empty(t, rec.hosts)
	assert.Empty(t, rep.Results)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	obs := LogObserver(log)

	obs.Observe(Result{Device: "10.0.0.1", Kind: KindOK, Message: "backup succeeded"})
	obs.Observe(Result{Device: "10.0.0.2", Kind: KindTransport, Message: "backup failed", Err: errors.New("timeout")})

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "backup succeeded")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "err=timeout")
}
