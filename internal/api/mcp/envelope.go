package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/recallkit/recall/internal/memory"
	"github.com/recallkit/recall/internal/storage"
)

// Error kinds carried in the tool result envelope. Clients branch on these,
// so they are part of the wire contract.
const (
	errKindNotFound    = "not_found"
	errKindUnsupported = "unsupported_operation"
	errKindValidation  = "validation_error"
	errKindBackend     = "backend_failure"
)

// envelopeResult normalizes a facade return value into the object every tool
// responds with:
//
//   - a sequence becomes {"results": [...]}
//   - a mapping (including structs) passes through unchanged
//   - anything else becomes {"result": <value>}
//
// The top-level JSON of a tool response is therefore always an object, never
// a bare array or scalar.
func envelopeResult(value interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}

	switch firstByte(raw) {
	case '{':
		return raw, nil
	case '[':
		return json.Marshal(map[string]json.RawMessage{"results": raw})
	default:
		return json.Marshal(map[string]json.RawMessage{"result": raw})
	}
}

// envelopeError renders a facade error as the {"error", "detail"} object.
func envelopeError(err error) json.RawMessage {
	payload := map[string]string{
		"error":  errorKind(err),
		"detail": errorDetail(err),
	}

	raw, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return json.RawMessage(`{"error":"backend_failure","detail":"failed to encode error"}`)
	}
	return raw
}

// errorKind classifies an error into one of the envelope kinds.
func errorKind(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return errKindNotFound
	case errors.Is(err, storage.ErrInvalidInput):
		return errKindValidation
	case errors.Is(err, memory.ErrUnsupported):
		return errKindUnsupported
	default:
		return errKindBackend
	}
}

// errorDetail strips the sentinel prefix so the detail reads as a plain
// message rather than a wrapped Go error chain.
func errorDetail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{storage.ErrInvalidInput, memory.ErrUnsupported, storage.ErrNotFound} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

// firstByte returns the first non-whitespace byte of raw, or 0 when empty.
func firstByte(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
