package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })

	SetLevel(LevelError)
	assert.False(t, Enabled(LevelInfo))
	assert.True(t, Enabled(LevelError))

	SetLevel(LevelDebug)
	assert.True(t, Enabled(LevelDebug))

	SetLevel(LevelInfo)
	assert.False(t, Enabled(LevelDebug))
	assert.True(t, Enabled(LevelInfo))
}

func TestLoggingDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Debug("debug", "k", 1)
		Info("info", "k", "v", "dangling")
		Warn("warn")
		Error("error", errors.New("boom"), "k", 2)
		Sync()
	})
}
