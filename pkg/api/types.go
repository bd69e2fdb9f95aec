package api

import (
	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/checkout"
)

// ErrorResponse is the envelope of every error answer.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error; see the ErrorType constants.
	Type string `json:"type"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error types.
const (
	ErrorTypeInvalidRequest     = "invalid_request_error"
	ErrorTypeNotFound           = "not_found"
	ErrorTypeCheckoutBlocked    = "checkout_blocked"
	ErrorTypeServerError        = "server_error"
	ErrorTypeServiceUnavailable = "service_unavailable"
	ErrorTypeTimeout            = "timeout"
)

// Error codes.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeBodyTooLarge     = "body_too_large"
	CodeInvalidSnapshot  = "invalid_snapshot"
	CodeInvalidQuantity  = "invalid_quantity"
	CodeInvalidInventory = "invalid_inventory"
	CodeMissingLineID    = "missing_line_id"
	CodeCartNotFound     = "cart_not_found"
	CodeCartBlocked      = "cart_blocked"
	CodeRulesNotLoaded   = "rules_not_loaded"
	CodeCartStoreMissing = "cart_store_missing"
	CodeDeadlineExceeded = "deadline_exceeded"
	CodeInternal         = "internal_error"
)

// AdmissionResponse answers evaluate and admission requests.
type AdmissionResponse struct {
	*checkout.Result

	// RulesGeneration identifies the rule set that produced the result.
	RulesGeneration uint64 `json:"rules_generation,omitempty"`
}

// AuthorizeResponse answers authorize requests. It is also the body of a
// 409, with Error set.
type AuthorizeResponse struct {
	CartID          string                `json:"cart_id"`
	Authorized      bool                  `json:"authorized"`
	Evaluation      *admission.Evaluation `json:"evaluation"`
	RulesGeneration uint64                `json:"rules_generation,omitempty"`
	Error           *ErrorDetail          `json:"error,omitempty"`
}
