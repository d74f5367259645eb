package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plexquant/internal/kmeans"
)

func TestPrometheus_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.RecordRun(kmeans.Result{Epochs: 3, Converged: true}, time.Millisecond, nil)
	p.RecordRun(kmeans.Result{Epochs: 300}, time.Millisecond, nil)
	p.RecordRun(kmeans.Result{Epochs: 4, Converged: true}, time.Millisecond, nil)
	p.RecordRun(kmeans.Result{}, 0, errors.New("bad"))

	assert.Equal(t, 2.0, testutil.ToFloat64(p.runs.WithLabelValues(OutcomeConverged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues(OutcomeExhausted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues(OutcomeError)))
	assert.Equal(t, 3, testutil.CollectAndCount(p.runs))
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)
	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c Collector = Noop{}
	c.RecordRun(kmeans.Result{}, time.Second, nil)
}
