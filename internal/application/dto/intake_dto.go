package dto

import "encoding/json"

// SetTextRequest replaces the raw message text held by the intake workflow.
type SetTextRequest struct {
	Text string `json:"text"`
}

// IntakeStateResponse is a snapshot of the intake workflow for the screen.
// Draft is the parser's (possibly edited) JSON object, nil before a parse.
type IntakeStateResponse struct {
	State   string          `json:"state"`
	Text    string          `json:"text"`
	Draft   json.RawMessage `json:"draft,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}
