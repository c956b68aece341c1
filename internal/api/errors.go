package api

import "encoding/json"

// genericError is the message used when the server's error body carries
// neither a detail nor a message field.
const genericError = "Request failed"

// APIError is a non-2xx response from the server.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Detail is the resolved server message: the body's "detail" field,
	// else its "message" field, else empty.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return genericError
}

// newAPIError builds an APIError from a response body. An unparseable
// body resolves to the generic message.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	// Parse failure leaves both fields empty, which is the fallback.
	_ = json.Unmarshal(body, &payload)

	detail := payload.Detail
	if detail == "" {
		detail = payload.Message
	}
	return &APIError{Status: status, Detail: detail}
}
