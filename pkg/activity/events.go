package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the bootstrap core.
const (
	VerbScriptLoaded       = "script.loaded"
	VerbScriptFailed       = "script.failed"
	VerbConfigPushed       = "config.pushed"
	VerbConfigPushFailed   = "config.push.failed"
	VerbCandidateFailed    = "i18n.candidate.failed"
	VerbI18NPersistFailed  = "i18n.persist.failed"
	VerbI18NPushed         = "i18n.pushed"
	VerbI18NFallback       = "i18n.fallback"
	VerbServiceCreated     = "service.created"
	VerbBootstrapCompleted = "bootstrap.completed"
)

// EventInput describes the common fields for bootstrap events.
type EventInput struct {
	ActorID    string
	ObjectID   string
	Channel    string
	URL        string
	Lang       string
	Version    string
	Strategy   string
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildScriptLoadedEvent reports a script or module that became usable.
func BuildScriptLoadedEvent(input EventInput) Event {
	return buildEvent(VerbScriptLoaded, "script", input)
}

// BuildScriptFailedEvent reports a script that could not be fetched or run.
func BuildScriptFailedEvent(input EventInput) Event {
	return buildEvent(VerbScriptFailed, "script", input)
}

// BuildConfigPushedEvent reports configuration applied to the engine.
func BuildConfigPushedEvent(input EventInput) Event {
	return buildEvent(VerbConfigPushed, "config", input)
}

// BuildConfigPushFailedEvent reports a provider or setter failure. The engine
// keeps its previous configuration.
func BuildConfigPushFailedEvent(input EventInput) Event {
	return buildEvent(VerbConfigPushFailed, "config", input)
}

// BuildCandidateFailedEvent reports one language candidate that could not be
// fetched or decoded.
func BuildCandidateFailedEvent(input EventInput) Event {
	return buildEvent(VerbCandidateFailed, "i18n", input)
}

// BuildI18NPersistFailedEvent reports a bundle that was negotiated but could
// not be written to storage.
func BuildI18NPersistFailedEvent(input EventInput) Event {
	return buildEvent(VerbI18NPersistFailed, "i18n", input)
}

// BuildI18NPushedEvent reports a negotiated bundle handed to the engine.
func BuildI18NPushedEvent(input EventInput) Event {
	return buildEvent(VerbI18NPushed, "i18n", input)
}

// BuildI18NFallbackEvent reports that negotiation failed and the fallback
// bundle was persisted instead.
func BuildI18NFallbackEvent(input EventInput) Event {
	return buildEvent(VerbI18NFallback, "i18n", input)
}

// BuildServiceCreatedEvent reports a new owner association.
func BuildServiceCreatedEvent(input EventInput) Event {
	return buildEvent(VerbServiceCreated, "service", input)
}

// BuildBootstrapCompletedEvent reports the end of an EnsureReady pass.
func BuildBootstrapCompletedEvent(input EventInput) Event {
	return buildEvent(VerbBootstrapCompleted, "bootstrap", input)
}

func buildEvent(verb, objectType string, input EventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.URL != "" {
		metadata = ensureMetadata(metadata)
		metadata["url"] = input.URL
	}
	if input.Lang != "" {
		metadata = ensureMetadata(metadata)
		metadata["lang"] = input.Lang
	}
	if input.Version != "" {
		metadata = ensureMetadata(metadata)
		metadata["version"] = input.Version
	}
	if input.Strategy != "" {
		metadata = ensureMetadata(metadata)
		metadata["strategy"] = input.Strategy
	}

	errText := ""
	if input.Err != nil {
		errText = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.URL)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.Lang)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Error:      errText,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
