// Package telemetry exposes Prometheus counters for palette, command and
// generation outcomes. A nil *Metrics is valid and records nothing.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quill"

type Metrics struct {
	registry *prometheus.Registry

	PaletteOpened   prometheus.Counter
	PaletteClosed   *prometheus.CounterVec
	Commands        *prometheus.CounterVec
	Generations     *prometheus.CounterVec
	GenerationEnded *prometheus.CounterVec
	Chunks          prometheus.Counter
	ChunkBytes      prometheus.Counter
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PaletteOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "palette",
			Name:      "opened_total",
			Help:      "Total number of slash palette sessions opened",
		}),
		PaletteClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "palette",
			Name:      "closed_total",
			Help:      "Total number of slash palette sessions closed",
		}, []string{"reason"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "executed_total",
			Help:      "Total number of editor commands executed",
		}, []string{"command", "source", "result"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "started_total",
			Help:      "Total number of AI generations started",
		}, []string{"provider"}),
		GenerationEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "ended_total",
			Help:      "Total number of AI generations by outcome",
		}, []string{"outcome"}),
		Chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "chunks_total",
			Help:      "Total number of generated chunks applied to documents",
		}),
		ChunkBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "chunk_bytes_total",
			Help:      "Total bytes of generated text applied to documents",
		}),
	}
	m.registry.MustRegister(
		m.PaletteOpened,
		m.PaletteClosed,
		m.Commands,
		m.Generations,
		m.GenerationEnded,
		m.Chunks,
		m.ChunkBytes,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePaletteOpened() {
	if m == nil {
		return
	}
	m.PaletteOpened.Inc()
}

func (m *Metrics) ObservePaletteClosed(reason string) {
	if m == nil {
		return
	}
	m.PaletteClosed.WithLabelValues(reason).Inc()
}

// ObserveCommand records a command run. source is "palette" or "toolbar".
func (m *Metrics) ObserveCommand(id, source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Commands.WithLabelValues(id, source, result).Inc()
}

func (m *Metrics) ObserveGenerationStarted(provider string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(provider).Inc()
}

func (m *Metrics) ObserveChunk(bytes int) {
	if m == nil {
		return
	}
	m.Chunks.Inc()
	m.ChunkBytes.Add(float64(bytes))
}

// ObserveGenerationEnded records completed, stopped, failed, accepted or
// rejected.
func (m *Metrics) ObserveGenerationEnded(outcome string) {
	if m == nil {
		return
	}
	m.GenerationEnded.WithLabelValues(outcome).Inc()
}
