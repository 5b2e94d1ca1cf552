package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Status of a recorded analysis
type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// Analysis is one analysis attempt kept for auditing. It is never read back
// to answer a new request.
type Analysis struct {
	ID              AnalysisID `json:"id"`
	Word            string     `json:"word"`
	TemplateID      string     `json:"template_id"`
	TemplateVersion string     `json:"template_version"`
	Provider        string     `json:"provider"`
	Model           string     `json:"model"`
	Status          Status     `json:"status"`
	ErrorKind       string     `json:"error_kind,omitempty"`
	ErrorDetail     string     `json:"error_detail,omitempty"`
	Result          string     `json:"result"` // JSON string of the parsed result, "{}" on failure
	LatencyMS       int64      `json:"latency_ms"`
	CreatedAt       time.Time  `json:"created_at"`
}
