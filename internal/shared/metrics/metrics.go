package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	documentsProcessedTotal  atomic.Uint64
	documentsFailedTotal     atomic.Uint64
	extractionFailedTotal    atomic.Uint64
	structuringStartedTotal  atomic.Uint64
	structuringFailedTotal   atomic.Uint64
	adjudicationPassedTotal  atomic.Uint64
	adjudicationRejectsTotal atomic.Uint64

	pipelineDuration = newHistogram([]float64{500, 1000, 2500, 5000, 10000, 20000, 45000, 90000, 180000})
)

// IncDocumentProcessed increments the processed-document counter.
func IncDocumentProcessed() {
	documentsProcessedTotal.Add(1)
}

// IncDocumentFailed increments the failed-document counter.
func IncDocumentFailed() {
	documentsFailedTotal.Add(1)
}

// IncExtractionFailed increments the text-extraction failure counter.
func IncExtractionFailed() {
	extractionFailedTotal.Add(1)
}

// IncStructuringStarted increments the structuring-pipeline started counter.
func IncStructuringStarted() {
	structuringStartedTotal.Add(1)
}

// IncStructuringFailed increments the structuring-pipeline failure counter.
func IncStructuringFailed() {
	structuringFailedTotal.Add(1)
}

// IncAdjudicationPassed counts adjudicated outputs that passed schema validation.
func IncAdjudicationPassed() {
	adjudicationPassedTotal.Add(1)
}

// IncAdjudicationRejected counts adjudicated outputs rejected by schema validation.
func IncAdjudicationRejected() {
	adjudicationRejectsTotal.Add(1)
}

// ObservePipelineDurationMs records an end-to-end document pipeline duration in milliseconds.
func ObservePipelineDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	pipelineDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "sof_documents_processed_total", "Total documents processed successfully", documentsProcessedTotal.Load())
	writeCounter(&buf, "sof_documents_failed_total", "Total documents that failed processing", documentsFailedTotal.Load())
	writeCounter(&buf, "sof_extraction_failed_total", "Total text extraction failures", extractionFailedTotal.Load())
	writeCounter(&buf, "sof_structuring_started_total", "Total structuring pipelines started", structuringStartedTotal.Load())
	writeCounter(&buf, "sof_structuring_failed_total", "Total structuring pipelines failed", structuringFailedTotal.Load())
	writeCounter(&buf, "sof_adjudication_passed_total", "Adjudicated outputs that passed schema validation", adjudicationPassedTotal.Load())
	writeCounter(&buf, "sof_adjudication_rejected_total", "Adjudicated outputs rejected by schema validation", adjudicationRejectsTotal.Load())
	writeHistogram(&buf, "sof_pipeline_duration_ms", "Document pipeline duration in milliseconds", pipelineDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
