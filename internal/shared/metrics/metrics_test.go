package metrics

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

func counterValue(t *testing.T, rendered, name string) uint64 {
	t.Helper()
	for _, line := range strings.Split(rendered, "\n") {
		if strings.HasPrefix(line, name+" ") {
			value, err := strconv.ParseUint(strings.TrimPrefix(line, name+" "), 10, 64)
			if err != nil {
				t.Fatalf("parse %q: %v", line, err)
			}
			return value
		}
	}
	t.Fatalf("counter %s not rendered", name)
	return 0
}

func TestRenderReflectsCounters(t *testing.T) {
	before := counterValue(t, Render(), "uploads_rejected_total")
	IncUploadRejected()
	after := counterValue(t, Render(), "uploads_rejected_total")
	if after != before+1 {
		t.Fatalf("uploads_rejected_total = %d, want %d", after, before+1)
	}
}

func TestAddCertificatesSubmittedIgnoresNonPositive(t *testing.T) {
	before := counterValue(t, Render(), "certificates_submitted_total")
	AddCertificatesSubmitted(0)
	AddCertificatesSubmitted(-3)
	if got := counterValue(t, Render(), "certificates_submitted_total"); got != before {
		t.Fatalf("certificates_submitted_total = %d, want unchanged %d", got, before)
	}
	AddCertificatesSubmitted(2)
	if got := counterValue(t, Render(), "certificates_submitted_total"); got != before+2 {
		t.Fatalf("certificates_submitted_total = %d, want %d", got, before+2)
	}
}

func TestHistogramRendersCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 20})
	h.Observe(5)
	h.Observe(15)
	h.Observe(99)

	var buf bytes.Buffer
	writeHistogram(&buf, "demo_ms", "demo", h.Snapshot())
	out := buf.String()

	for _, want := range []string{
		`demo_ms_bucket{le="10"} 1`,
		`demo_ms_bucket{le="20"} 2`,
		`demo_ms_bucket{le="+Inf"} 3`,
		"demo_ms_sum 119",
		"demo_ms_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered histogram missing %q:\n%s", want, out)
		}
	}
}
