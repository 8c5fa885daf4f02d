package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		name  string
		env   string
		level string
		want  zapcore.Level
	}{
		{name: "production default", env: "production", want: zapcore.InfoLevel},
		{name: "development default", env: "development", want: zapcore.DebugLevel},
		{name: "override", env: "production", level: "warn", want: zapcore.WarnLevel},
		{name: "invalid override ignored", env: "production", level: "loud", want: zapcore.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.env, tc.level)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !log.Core().Enabled(tc.want) {
				t.Fatalf("expected %s to be enabled", tc.want)
			}
			if tc.want > zapcore.DebugLevel && log.Core().Enabled(tc.want-1) {
				t.Fatalf("expected %s to be disabled", tc.want-1)
			}
		})
	}
}
