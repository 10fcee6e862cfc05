package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of processing jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var activeSubscriberCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_progress_subscribers",
	Help: "Number of live progress-stream subscriber connections",
})

var documentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_processed_total",
	Help: "Pipeline runs finished, labelled by terminal status",
}, []string{"status"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) CaptureWriteHeaderMetrics(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps the wrapped writer usable for event streams.
func (r *HttpStatusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func IncrementActiveSubscribers() {
	activeSubscriberCount.Inc()
}

func DecrementActiveSubscribers() {
	activeSubscriberCount.Dec()
}

func CountDocumentProcessed(status string) {
	documentsProcessed.WithLabelValues(status).Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pipeline_run_duration_seconds",
	Help:    "Total time spent in one document pipeline run.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pipeline_stage_latency_seconds",
	Help:    "Latency of pipeline stages and external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"stage"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
