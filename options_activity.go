package wikiboot

import (
	"context"

	"github.com/goliatone/go-wikiboot/pkg/activity"
)

// WithActivityHooks attaches hooks that receive bootstrap diagnostics.
// Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *bootConfig) {
		cfg.activityHooks = normalized
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

// emit forwards event to the configured hooks. Hook failures are logged and
// never interrupt the bootstrap sequence.
func (cfg bootConfig) emit(ctx context.Context, event activity.Event) {
	if err := cfg.emitter.Emit(ctx, event); err != nil {
		cfg.logger.LogLoad(LoadLogEvent{Step: "activity", Key: event.Verb, Err: err})
	}
}
