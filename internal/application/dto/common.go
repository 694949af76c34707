package dto

// ErrorResponse HTTP error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DocumentResponse carries a backend document locator for the client to open.
type DocumentResponse struct {
	URL string `json:"url"`
}
