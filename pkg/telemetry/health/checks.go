package health

import "context"

// Pinger is implemented by the catalog store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck checks that p answers a ping.
func PingCheck(p Pinger) CheckFunc {
	return p.Ping
}

// ErrorCheck adapts a context-free check such as rules.Manager.Check.
func ErrorCheck(check func() error) CheckFunc {
	return func(context.Context) error {
		return check()
	}
}
