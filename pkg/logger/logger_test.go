package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{" warn ", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"", InfoLevel, false},
		{"verbose", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: DebugLevel, Output: &buf, JSON: true})

	log.Debug("resolved", "formula", "H2O", "mass", 18.0105646863)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "resolved", entry["msg"])
	assert.Equal(t, "H2O", entry["formula"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: WarnLevel, Output: &buf})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNopAndDefault(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("nothing", "k", 1)
		Default().Info("discarded before setup")
	})
	require.NoError(t, Setup("debug", false))
	assert.NotNil(t, Default())
	assert.Error(t, Setup("loud", false))
}
