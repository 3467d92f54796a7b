package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsRejectedTotal     atomic.Uint64
	rendersDegradedTotal     atomic.Uint64
	extractionsStartedTotal  atomic.Uint64
	extractionsDegradedTotal atomic.Uint64
	certificatesDraftedTotal atomic.Uint64
	certificatesSubmitted    atomic.Uint64

	extractionDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 90000})
)

// IncUploadRejected increments the intake rejection counter.
func IncUploadRejected() {
	uploadsRejectedTotal.Add(1)
}

// IncRenderDegraded increments the placeholder-render counter.
func IncRenderDegraded() {
	rendersDegradedTotal.Add(1)
}

// IncExtractionStarted increments the extraction attempt counter.
func IncExtractionStarted() {
	extractionsStartedTotal.Add(1)
}

// IncExtractionDegraded increments the default-filled extraction counter.
func IncExtractionDegraded() {
	extractionsDegradedTotal.Add(1)
}

// IncCertificateDrafted increments the draft-saved counter.
func IncCertificateDrafted() {
	certificatesDraftedTotal.Add(1)
}

// AddCertificatesSubmitted adds n promoted records to the submitted counter.
func AddCertificatesSubmitted(n int) {
	if n <= 0 {
		return
	}
	certificatesSubmitted.Add(uint64(n))
}

// ObserveExtractionDurationMs records an extraction call duration in milliseconds.
func ObserveExtractionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	extractionDuration.Observe(value)
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
	writeCounter(&buf, "uploads_rejected_total", "Total uploads rejected by intake validation", uploadsRejectedTotal.Load())
	writeCounter(&buf, "renders_degraded_total", "Total document renders that fell back to a placeholder", rendersDegradedTotal.Load())
	writeCounter(&buf, "extractions_started_total", "Total extraction service calls attempted", extractionsStartedTotal.Load())
	writeCounter(&buf, "extractions_degraded_total", "Total extractions that returned defaults", extractionsDegradedTotal.Load())
	writeCounter(&buf, "certificates_drafted_total", "Total certificate drafts saved", certificatesDraftedTotal.Load())
	writeCounter(&buf, "certificates_submitted_total", "Total certificate records promoted to submitted", certificatesSubmitted.Load())
	writeHistogram(&buf, "extraction_duration_ms", "Extraction call duration in milliseconds", extractionDuration.Snapshot())
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
			break
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
