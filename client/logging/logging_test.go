package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopLogger_DiscardsEverything(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debug("anything", "k", "v")
	l.Info("anything")
	l.Warn("anything")
	l.Error("anything")
}

func TestZerologLogger_WritesMessageAndRedactsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")

	privateKey := "0x" + repeat("ab", 32)
	l.Info("signing", "privateKey", privateKey)

	out := buf.String()
	assert.Contains(t, out, "signing")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, privateKey)
}

func TestZerologLogger_LevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}
