package activitymap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/nexotv/nexo-auth"
)

func TestNormalize(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("ART", -3*3600))
	meta := map[string]any{"email": "a@x.com"}

	r := Normalize(auth.ActivityEvent{
		EventType:  auth.ActivityEventLoginSuccess,
		UserID:     "user-1",
		Metadata:   meta,
		OccurredAt: at,
	})

	assert.Equal(t, "user-1", r.ActorID)
	assert.Equal(t, "login", r.Verb)
	assert.Equal(t, "success", r.Outcome)
	assert.Equal(t, "auth", r.Channel)
	assert.Equal(t, at.UTC(), r.OccurredAt)
	assert.Equal(t, meta, r.Metadata)

	r.Metadata["email"] = "changed"
	assert.Equal(t, "a@x.com", meta["email"])
}

func TestNormalizeDefaults(t *testing.T) {
	r := Normalize(auth.ActivityEvent{EventType: auth.ActivityEventNotificationFailure})

	assert.Equal(t, "anonymous", r.ActorID)
	assert.Equal(t, "notification", r.Verb)
	assert.Equal(t, "failure", r.Outcome)
	assert.Nil(t, r.Metadata)
	assert.False(t, r.OccurredAt.IsZero())

	r = Normalize(auth.ActivityEvent{EventType: "custom"}, WithChannel("billing"), WithActorFallback("system"))
	assert.Equal(t, "system", r.ActorID)
	assert.Equal(t, "custom", r.Verb)
	assert.Empty(t, r.Outcome)
	assert.Equal(t, "billing", r.Channel)
}

type captureLogger struct {
	level string
	msg   string
	args  []any
}

func (c *captureLogger) set(level, msg string, args []any) {
	c.level, c.msg, c.args = level, msg, args
}

func (c *captureLogger) Debug(msg string, args ...any) { c.set("debug", msg, args) }
func (c *captureLogger) Info(msg string, args ...any)  { c.set("info", msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.set("warn", msg, args) }
func (c *captureLogger) Error(msg string, args ...any) { c.set("error", msg, args) }

func TestLogSink(t *testing.T) {
	logger := &captureLogger{}
	sink := LogSink(logger)

	require.NoError(t, sink.Record(context.Background(), auth.ActivityEvent{
		EventType: auth.ActivityEventSignupSuccess,
		UserID:    "user-1",
	}))
	assert.Equal(t, "info", logger.level)
	assert.Equal(t, "auth activity", logger.msg)
	assert.Contains(t, logger.args, "signup")
	assert.NotContains(t, logger.args, "metadata")

	require.NoError(t, sink.Record(context.Background(), auth.ActivityEvent{
		EventType: auth.ActivityEventLoginFailure,
		Metadata:  map[string]any{"reason": "mismatch"},
	}))
	assert.Equal(t, "warn", logger.level)
	assert.Contains(t, logger.args, "metadata")
	assert.Contains(t, logger.args, "anonymous")
}
