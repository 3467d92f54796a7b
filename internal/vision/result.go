package vision

import "strings"

// Result statuses. A degraded result carries defaults plus the reason the
// call never produced a genuine extraction, so callers can distinguish the
// two without inspecting field values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Result is the outcome of one extraction attempt.
type Result struct {
	Status  string `json:"status"`
	Fields  Fields `json:"data"`
	Reason  string `json:"reason,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// IsDegraded reports whether the result holds defaults instead of a real
// extraction.
func (r Result) IsDegraded() bool {
	return r.Status == StatusDegraded
}

// Finalize wraps extracted fields in an ok result, attaching the advisory
// warning that lists the fields the model could not read. The warning never
// blocks anything; the reviewer fills the gaps by hand.
func Finalize(fields Fields) Result {
	r := Result{Status: StatusOK, Fields: fields}
	if missing := fields.Missing(); len(missing) > 0 {
		r.Warning = "部分字段识别失败：" + strings.Join(missing, ", ") + "，请手动补充"
	}
	return r
}

// Degraded builds the fallback result for a failed extraction attempt.
func Degraded(reason string) Result {
	return Result{Status: StatusDegraded, Fields: DefaultFields(), Reason: reason}
}
