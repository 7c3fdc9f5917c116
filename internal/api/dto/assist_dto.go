package dto

import "github.com/dopaj/field-service/internal/assist"

// SuggestionsRequest payload.
type SuggestionsRequest struct {
	Failure string `json:"failure"`
}

// SummaryRequest payload.
type SummaryRequest struct {
	Failure  string `json:"failure"`
	Solution string `json:"solution"`
}

// ExtractionResponse wraps the best-effort field extraction. Message is
// a soft advisory set when the assistant was unavailable and the form
// must be filled by hand.
type ExtractionResponse struct {
	Fields  assist.Extraction `json:"fields"`
	Message string            `json:"message,omitempty"`
}

// SuggestionsResponse wraps the ranked remediation steps.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Message     string   `json:"message,omitempty"`
}

// SummaryResponse wraps the executive summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
	Message string `json:"message,omitempty"`
}
