package types

// ResponseEnvelope is the uniform top-level shape every HTTP response uses,
// success or failure, so callers never have to branch on status code to
// know where to look for the payload.
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Meta    *ResponseMeta  `json:"meta,omitempty"`
	Error   *ResponseError `json:"error,omitempty"`
}

// ResponseMeta carries pagination and provenance fields that don't belong
// inside Data itself.
type ResponseMeta struct {
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Total      int    `json:"total,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// ResponseError mirrors errors.AppError's fields for wire transport
type ResponseError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewSuccessEnvelope builds a success envelope with optional meta
func NewSuccessEnvelope(data any, meta *ResponseMeta) *ResponseEnvelope {
	return &ResponseEnvelope{Success: true, Data: data, Meta: meta}
}

// NewErrorEnvelope builds a failure envelope
func NewErrorEnvelope(code, message string, details map[string]any, requestID string) *ResponseEnvelope {
	var meta *ResponseMeta
	if requestID != "" {
		meta = &ResponseMeta{RequestID: requestID}
	}
	return &ResponseEnvelope{
		Success: false,
		Meta:    meta,
		Error:   &ResponseError{Code: code, Message: message, Details: details},
	}
}
