package api

import (
	"anovalab/domain/experiment"
)

// AnalyzeRequest is the JSON body of POST /v1/anova
type AnalyzeRequest struct {
	Source       string                   `json:"source,omitempty"`
	Measures     []string                 `json:"measures,omitempty"`
	Observations []experiment.Observation `json:"observations"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse reports liveness and whether runs are stored
type HealthResponse struct {
	Status     string `json:"status"`
	Persistent bool   `json:"persistent"`
}
