package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technosupport/mxtools/internal/batch"
)

func TestCollectorCountsOutcomes(t *testing.T) {
	c := NewCollector()

	c.Observe(batch.Result{Tool: "mxapi", Kind: batch.KindOK, Duration: 20 * time.Millisecond})
	c.Observe(batch.Result{Tool: "mxapi", Kind: batch.KindOK, Duration: 30 * time.Millisecond})
	c.Observe(batch.Result{Tool: "mxapi", Kind: batch.KindTransport, Duration: 3 * time.Second})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("mxapi", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("mxapi", "transport")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestCollectorFinish(t *testing.T) {
	c := NewCollector()
	rep := batch.Report{
		Tool: "mxbackup",
		Results: []batch.Result{
			{Kind: batch.KindOK},
			{Kind: batch.KindProtocol},
			{Kind: batch.KindSkipped},
		},
		Disabled: 2,
	}
	c.Finish(rep)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.devices.WithLabelValues("mxbackup", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.devices.WithLabelValues("mxbackup", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.devices.WithLabelValues("mxbackup", "skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.devices.WithLabelValues("mxbackup", "disabled")))
	assert.Greater(t, testutil.ToFloat64(c.lastRun.WithLabelValues("mxbackup")), 0.0)
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.Observe(batch.Result{Tool: "mxmic", Kind: batch.KindOK})

	path := filepath.Join(t.TempDir(), "mx.prom")
	require.NoError(t, c.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `mx_device_operations_total{kind="ok",tool="mxmic"} 1`))
}

func TestWriteTextfileBadPath(t *testing.T) {
	c := NewCollector()
	err := c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "mx.prom"))
	assert.Error(t, err)
}
