// Package envelope implements the wire contract of the card-index backend:
// every response is wrapped in an envelope carrying success/status flags,
// metadata and either a payload or an error object. Transform unwraps an
// envelope and rewrites Mongo-style "_id" fields so the payload exposes a
// conventional "id" everywhere.
package envelope

import "fmt"

// Version is the envelope contract version this package understands.
const Version = "2.0"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Meta is the metadata block required on every envelope.
type Meta struct {
	Timestamp string  `json:"timestamp"`
	Version   string  `json:"version"`
	Duration  float64 `json:"duration,omitempty"`
	Cached    bool    `json:"cached,omitempty"`
}

// APIError is the error block present on failed envelopes.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// InvalidFormatError reports a value that does not satisfy the envelope
// contract. It signals a programmer or contract error, never a transient
// condition, and is not retryable.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return "invalid response envelope: " + e.Reason
}

func invalidFormat(format string, args ...any) *InvalidFormatError {
	return &InvalidFormatError{Reason: fmt.Sprintf(format, args...)}
}

// Transform validates a decoded JSON value against the envelope contract and
// returns its data payload with identifiers mapped (see MapIdentifiers).
//
// The input is the result of unmarshalling a response body into any:
// envelopes are map[string]any, payloads are maps, slices, scalars or nil.
// A missing "data" key and an explicit null both come back as nil.
//
// A well-formed error envelope (success=false) does not fail here; it yields
// a nil payload and callers inspect the error block separately, e.g. via
// ErrorInfo. Transform never mutates its input.
func Transform(raw any) (any, error) {
	env, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return nil, invalidFormat("envelope is null")
		}
		return nil, invalidFormat("envelope must be an object, got %T", raw)
	}
	if _, ok := env["success"]; !ok {
		return nil, invalidFormat("missing required field %q", "success")
	}
	if _, ok := env["status"]; !ok {
		return nil, invalidFormat("missing required field %q", "status")
	}
	if _, ok := env["meta"]; !ok {
		return nil, invalidFormat("missing required field %q", "meta")
	}
	return MapIdentifiers(env["data"]), nil
}

// IsSuccess reports whether a decoded envelope claims success. Non-envelope
// values report false.
func IsSuccess(raw any) bool {
	env, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	success, _ := env["success"].(bool)
	return success
}

// ErrorInfo extracts the error block from a decoded envelope. ok is false
// when no error block is present.
func ErrorInfo(raw any) (*APIError, bool) {
	env, isMap := raw.(map[string]any)
	if !isMap {
		return nil, false
	}
	block, isMap := env["error"].(map[string]any)
	if !isMap {
		return nil, false
	}
	apiErr := &APIError{Details: block["details"]}
	apiErr.Message, _ = block["message"].(string)
	apiErr.Code, _ = block["code"].(string)
	return apiErr, true
}

// MetaOf extracts the metadata block from a decoded envelope. ok is false
// when no meta block is present.
func MetaOf(raw any) (Meta, bool) {
	env, isMap := raw.(map[string]any)
	if !isMap {
		return Meta{}, false
	}
	block, isMap := env["meta"].(map[string]any)
	if !isMap {
		return Meta{}, false
	}
	var meta Meta
	meta.Timestamp, _ = block["timestamp"].(string)
	meta.Version, _ = block["version"].(string)
	meta.Duration, _ = block["duration"].(float64)
	meta.Cached, _ = block["cached"].(bool)
	return meta, true
}
