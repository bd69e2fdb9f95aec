// Package api implements the cartgate HTTP endpoints.
//
//	POST /v1/admission/evaluate             evaluate a snapshot sent in the body
//	GET  /v1/carts/{id}/admission           advisory check of a stored cart
//	POST /v1/carts/{id}/checkout/authorize  authoritative pre-payment check
//
// Admission outcomes are not errors: evaluate and admission always answer 200
// and the shopper-facing verdict is in decision.passed and decision.message.
// authorize answers 409 when the cart is blocked. Malformed carts answer 400
// and unknown carts 404.
//
// Errors use a single envelope:
//
//	{"error": {"message": "...", "type": "invalid_request_error", "code": "invalid_quantity"}}
package api
