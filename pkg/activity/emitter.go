package activity

import (
	"context"
	"strings"
	"time"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "wikiboot"

// Config selects whether bootstrap diagnostics are emitted and on which channel.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps bootstrap events with a channel and time before handing them
// to Hooks. Hooks are expected to be normalized by the caller.
type Emitter struct {
	hooks   Hooks
	channel string
	now     func() time.Time
}

// NewEmitter returns an emitter for hooks. A disabled config yields an emitter
// that drops every event.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{channel: DefaultChannel, now: time.Now}
	if cfg.Enabled {
		e.hooks = hooks
	}
	if channel := strings.TrimSpace(cfg.Channel); channel != "" {
		e.channel = channel
	}
	return e
}

// Enabled reports whether Emit reaches any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.hooks.Enabled()
}

// Emit fills Channel and OccurredAt when unset and notifies the hooks.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	return e.hooks.Notify(ctx, event)
}
