// Package logging provides structured logging on top of log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logger.Info("catalog opened", "backend", "sqlite")
//
// # Context fields
//
// Request and cart identifiers stored in a context are attached to every
// record logged with that context:
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	ctx = logging.WithCartID(ctx, "cart-9")
//	logger.InfoContext(ctx, "admission evaluated")
//	// {"msg":"admission evaluated","request_id":"req-123","cart_id":"cart-9",...}
//
// The same applies to the *slog.Logger returned by Slog, which is what the
// admission, checkout and rules packages accept.
package logging
