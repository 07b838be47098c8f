package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		wantLevel   zapcore.Level
		wantErr     bool
	}{
		{name: "default level", level: "", wantLevel: zapcore.InfoLevel},
		{name: "debug development", level: "debug", development: true, wantLevel: zapcore.DebugLevel},
		{name: "upper case", level: "WARN", wantLevel: zapcore.WarnLevel},
		{name: "unknown", level: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.development)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	assert.False(t, OrNop(nil).Core().Enabled(zapcore.ErrorLevel))
}
