package server

import "context"

// PingerFunc adapts an ordinary probe function to the Pinger interface.
// The serve command uses it to wrap pre-flight checks (e.g. the embedder
// configuration check) as readiness probes without a dedicated type.
type PingerFunc struct {
	// name identifies the dependency in readiness responses.
	name string
	// fn is the probe to run.
	fn func(ctx context.Context) error
}

// NewPingerFunc constructs a PingerFunc with the given label and probe.
func NewPingerFunc(name string, fn func(ctx context.Context) error) *PingerFunc {
	return &PingerFunc{name: name, fn: fn}
}

// Name returns the dependency label used in readiness responses.
func (p *PingerFunc) Name() string { return p.name }

// Ping runs the wrapped probe.
func (p *PingerFunc) Ping(ctx context.Context) error { return p.fn(ctx) }
