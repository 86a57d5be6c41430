package notify

import (
	"context"
	"log/slog"
)

// Config configures event emission.
type Config struct {
	Enabled  bool
	Endpoint string
}

// Emitter is the interface for run-event emission.
type Emitter interface {
	EmitRun(ctx context.Context, evt Event) error
	Close() error
}

// NewEmitter creates an appropriate emitter based on configuration.
func NewEmitter(cfg Config) Emitter {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return &noopEmitter{}
	}
	slog.Info("using HTTP run-event emitter", "endpoint", cfg.Endpoint)
	return NewHTTPEmitter(cfg)
}

// noopEmitter discards all events.
type noopEmitter struct{}

func (n *noopEmitter) EmitRun(_ context.Context, _ Event) error {
	return nil
}

func (n *noopEmitter) Close() error {
	return nil
}
