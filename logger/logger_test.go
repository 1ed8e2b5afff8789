package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("issued", "user_id", "u1", "token", "abc.def.ghi", "Admin_Key", "k")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, "[REDACTED]", fields["token"])
	assert.Equal(t, "[REDACTED]", fields["Admin_Key"])
}

func TestWithKeepsContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("service", "session")

	log.Warn("persistence failed", "op", "upsert")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "session", entries[0].ContextMap()["service"])
	assert.Equal(t, "upsert", entries[0].ContextMap()["op"])
}

func TestOddKeyValuesDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("odd", "token")
	})
}
