// Package middleware provides the HTTP middleware shared by the cartgate API.
//
// The server applies them outermost first:
//
//	Recovery -> RequestID -> Logging -> handler
//
// so that a panicking handler is still logged with its request ID.
package middleware
