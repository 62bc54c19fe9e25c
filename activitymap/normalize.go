// Package activitymap flattens auth activity events into a transport
// agnostic record for logs and downstream audit consumers.
package activitymap

import (
	"context"
	"strings"
	"time"

	auth "github.com/nexotv/nexo-auth"
)

const (
	// MetadataKeyOutcome stores the trailing segment of the event type
	MetadataKeyOutcome = "outcome"
)

const (
	defaultChannel = "auth"
	defaultActorID = "anonymous"
)

// Record is the flattened shape of an auth.ActivityEvent
type Record struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	Outcome    string         `json:"outcome,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization
type Option func(*options)

type options struct {
	channel       string
	actorFallback string
}

// WithChannel overrides the record channel
func WithChannel(channel string) Option {
	return func(o *options) {
		o.channel = strings.TrimSpace(channel)
	}
}

// WithActorFallback sets the actor id used when the event carries no user,
// e.g. a login attempt for an unknown email.
func WithActorFallback(actorID string) Option {
	return func(o *options) {
		o.actorFallback = strings.TrimSpace(actorID)
	}
}

// Normalize converts an event. "auth.login.failure" becomes verb "login"
// with outcome "failure".
func Normalize(event auth.ActivityEvent, opts ...Option) Record {
	o := options{channel: defaultChannel, actorFallback: defaultActorID}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	verb, outcome := splitEventType(event.EventType, o.channel)

	actorID := strings.TrimSpace(event.UserID)
	if actorID == "" {
		actorID = o.actorFallback
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return Record{
		ActorID:    actorID,
		Verb:       verb,
		Outcome:    outcome,
		Channel:    o.channel,
		Metadata:   cloneMap(event.Metadata),
		OccurredAt: occurredAt.UTC(),
	}
}

// LogSink returns an ActivitySink that writes normalized records to logger
func LogSink(logger auth.Logger, opts ...Option) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		r := Normalize(event, opts...)
		args := []any{
			"actor_id", r.ActorID,
			"verb", r.Verb,
			"outcome", r.Outcome,
			"channel", r.Channel,
			"occurred_at", r.OccurredAt,
		}
		if len(r.Metadata) > 0 {
			args = append(args, "metadata", r.Metadata)
		}

		if r.Outcome == "failure" {
			logger.Warn("auth activity", args...)
		} else {
			logger.Info("auth activity", args...)
		}
		return nil
	})
}

func splitEventType(t auth.ActivityEventType, channel string) (string, string) {
	name := strings.TrimPrefix(string(t), channel+".")
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
