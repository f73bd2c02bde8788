package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// Each test registers against the process-global default registry, so every
// test uses its own service name.

func TestRecordSuccessAndError(t *testing.T) {
	m := New("test_counters")

	m.RecordSuccess("extract")
	m.RecordSuccess("extract")
	m.RecordError("extract", "bot_check")

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.processedTotal.WithLabelValues("success", "extract")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.processedTotal.WithLabelValues("error", "extract")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.errorsTotal.WithLabelValues("bot_check", "extract")))
}

func TestInProgressGauge(t *testing.T) {
	m := New("test_gauge")

	m.StartOperation("publish")
	m.StartOperation("publish")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.inProgress.WithLabelValues("publish")))

	m.EndOperation("publish")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inProgress.WithLabelValues("publish")))
}

func TestHistogramsObserve(t *testing.T) {
	m := New("test_histograms")

	m.RecordDuration("extract", 1.5)
	m.RecordFileSize("mp4", 10*1024*1024)

	assert.Equal(t, 1, testutil.CollectAndCount(m.durationSeconds))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fileSizeBytes))
}
