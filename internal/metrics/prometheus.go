package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the voice session service
type Metrics struct {
	// Session lifecycle metrics
	SessionsStarted prometheus.Counter
	SessionsFailed  prometheus.Counter
	ActiveSessions  prometheus.Gauge
	SessionDuration prometheus.Histogram

	// Audio pipeline metrics
	FramesCaptured    prometheus.Counter
	BuffersScheduled  prometheus.Counter
	Interruptions     prometheus.Counter
	BuffersFlushed    prometheus.Counter

	// Dialogue metrics
	TranscriptsProcessed prometheus.Counter
	Reprompts            prometheus.Counter

	// Tool dispatch metrics
	ToolCalls        *prometheus.CounterVec
	ToolCallDuration prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics on the default
// registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates and registers all Prometheus metrics on the given
// registerer
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// Session lifecycle metrics
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_sessions_started_total",
			Help: "Total number of call sessions started",
		}),
		SessionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_sessions_failed_total",
			Help: "Total number of sessions that ended in the error state",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sehatai_active_sessions",
			Help: "Current number of connected call sessions",
		}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sehatai_session_duration_seconds",
			Help:    "Duration of call sessions from connect to disconnect",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		}),

		// Audio pipeline metrics
		FramesCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_audio_frames_captured_total",
			Help: "Total number of audio frames captured from the input device",
		}),
		BuffersScheduled: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_audio_buffers_scheduled_total",
			Help: "Total number of inbound audio buffers scheduled for playback",
		}),
		Interruptions: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_audio_interruptions_total",
			Help: "Total number of interruption signals received",
		}),
		BuffersFlushed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_audio_buffers_flushed_total",
			Help: "Total number of scheduled buffers force-stopped by interruptions",
		}),

		// Dialogue metrics
		TranscriptsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_transcripts_processed_total",
			Help: "Total number of final transcripts processed by the dialogue engine",
		}),
		Reprompts: factory.NewCounter(prometheus.CounterOpts{
			Name: "sehatai_dialogue_reprompts_total",
			Help: "Total number of re-prompts caused by ambiguous or invalid input",
		}),

		// Tool dispatch metrics
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sehatai_tool_calls_total",
			Help: "Total number of tool calls dispatched, by tool name and outcome",
		}, []string{"tool", "outcome"}),
		ToolCallDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sehatai_tool_call_duration_seconds",
			Help:    "Duration of tool call execution",
			Buckets: prometheus.DefBuckets,
		}),

		// HTTP API metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sehatai_http_requests_total",
			Help: "Total number of HTTP API requests, by endpoint and status",
		}, []string{"endpoint", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sehatai_http_request_duration_seconds",
			Help:    "Duration of HTTP API request handling",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
