package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObservePaletteOpened()
	m.ObservePaletteClosed("executed")
	m.ObserveCommand("heading1", "palette", nil)
	m.ObserveCommand("heading1", "palette", errors.New("x"))
	m.ObserveGenerationStarted("Scripted")
	m.ObserveChunk(3)
	m.ObserveChunk(5)
	m.ObserveGenerationEnded("accepted")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaletteOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaletteClosed.WithLabelValues("executed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("heading1", "palette", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("heading1", "palette", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Chunks))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.ChunkBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationEnded.WithLabelValues("accepted")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePaletteOpened()
		m.ObservePaletteClosed("escape")
		m.ObserveCommand("x", "toolbar", nil)
		m.ObserveGenerationStarted("p")
		m.ObserveChunk(1)
		m.ObserveGenerationEnded("rejected")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObservePaletteOpened()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "quill_palette_opened_total 1")
}
