package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/checkout"
)

// decodeError reports a request body that could not be decoded.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// HandleError maps err to an HTTP status and error envelope. Unknown errors
// become a generic 500 so internals are not exposed.
func HandleError(err error) (int, *ErrorResponse) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge,
			newError("request body too large", ErrorTypeInvalidRequest, CodeBodyTooLarge)
	}

	var decErr *decodeError
	if errors.As(err, &decErr) {
		return http.StatusBadRequest,
			newError(decErr.Error(), ErrorTypeInvalidRequest, CodeInvalidJSON)
	}

	if errors.Is(err, cart.ErrInvalidSnapshot) {
		return http.StatusBadRequest,
			newError(err.Error(), ErrorTypeInvalidRequest, snapshotCode(err))
	}

	switch {
	case errors.Is(err, checkout.ErrCartNotFound):
		return http.StatusNotFound,
			newError(err.Error(), ErrorTypeNotFound, CodeCartNotFound)
	case errors.Is(err, checkout.ErrNoEngine):
		return http.StatusServiceUnavailable,
			newError("admission rules are not loaded", ErrorTypeServiceUnavailable, CodeRulesNotLoaded)
	case errors.Is(err, checkout.ErrNoCartStore):
		return http.StatusServiceUnavailable,
			newError("cart lookups are not available", ErrorTypeServiceUnavailable, CodeCartStoreMissing)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout,
			newError("request timed out", ErrorTypeTimeout, CodeDeadlineExceeded)
	}

	return http.StatusInternalServerError,
		newError("An internal error occurred. Please try again later.", ErrorTypeServerError, CodeInternal)
}

func snapshotCode(err error) string {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return CodeInvalidQuantity
	case errors.Is(err, cart.ErrInvalidInventory):
		return CodeInvalidInventory
	case errors.Is(err, cart.ErrMissingLineID):
		return CodeMissingLineID
	default:
		return CodeInvalidSnapshot
	}
}

func newError(message, errType, code string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Message: message, Type: errType, Code: code}}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
