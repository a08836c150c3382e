package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithOutput_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, 0)

	l.Debug("hidden", "key", "value")
	assert.Empty(t, buf.String())

	l.Info("visible", "key", "value")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "key=value")
}

func TestNewWithOutput_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, -4)

	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
