package models

// AdvisoryStatus classifies the external opinion on a valuation.
type AdvisoryStatus string

const (
	AdvisoryOK           AdvisoryStatus = "ok"
	AdvisoryMinorConcern AdvisoryStatus = "minor-concern"
	AdvisoryMajorConcern AdvisoryStatus = "major-concern"
	AdvisoryUnavailable  AdvisoryStatus = "unavailable"
	AdvisoryError        AdvisoryStatus = "error"
)

// AdvisoryOpinion is the optional second opinion from the external
// reasoning backend. It is consumed by the blending step and cached only
// for the 24h signature window, never persisted with the result.
type AdvisoryOpinion struct {
	Status           AdvisoryStatus `json:"status"`
	Confidence       float64        `json:"confidence"`
	RecommendedValue *float64       `json:"recommended_value,omitempty"`
	Rationale        string         `json:"rationale,omitempty"`
}
