package logger

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	var tests = []struct {
		in       string
		want     Level
		errIsNil bool
	}{
		{"debug", DebugLevel, true},
		{"INFO", InfoLevel, true},
		{"", InfoLevel, true},
		{"warning", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"fatal", FatalLevel, true},
		{"loud", InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, l)
			assert.Equal(t, tt.errIsNil, err == nil)
		})
	}
}

func TestThreshold(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		log.SetFlags(flags)
		SetLevel(InfoLevel)
	})

	SetLevel(WarnLevel)
	Debug("dropped %d", 1)
	Info("dropped %d", 2)
	Warn("kept %d", 3)
	Error("kept %d", 4)

	out := buf.String()
	require.NotContains(t, out, "dropped")
	assert.Contains(t, out, "[WARN ] kept 3")
	assert.Contains(t, out, "[ERROR] kept 4")
	assert.Equal(t, WarnLevel, CurrentLevel())
	assert.Equal(t, "warn", CurrentLevel().String())
}
