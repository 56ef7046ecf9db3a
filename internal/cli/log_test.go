package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"

	"artboard/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbose    bool
		configured string
		want       log.Level
	}{
		{false, "", log.InfoLevel},
		{false, "warn", log.WarnLevel},
		{false, "ERROR", log.ErrorLevel},
		{false, "chatty", log.InfoLevel},
		{true, "error", log.DebugLevel},
	}
	for _, tt := range tests {
		if got := levelFor(tt.verbose, tt.configured); got != tt.want {
			t.Errorf("levelFor(%v, %q) = %v, want %v", tt.verbose, tt.configured, got, tt.want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	ctx := context.Background()
	if loggerFromContext(ctx) == nil {
		t.Fatal("loggerFromContext should return default logger when none set")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	if loggerFromContext(withLogger(ctx, custom)) != custom {
		t.Error("loggerFromContext should return the custom logger")
	}
}

func TestConfigFromContext(t *testing.T) {
	ctx := context.Background()
	if cfg := configFromContext(ctx); cfg == nil || cfg.MCP.Name != "artboard-mcp" {
		t.Fatalf("default config = %+v", cfg)
	}

	cfg := config.NewDefaultConfig()
	cfg.MCP.Name = "custom"
	if configFromContext(withConfig(ctx, cfg)) != cfg {
		t.Error("configFromContext should return the attached config")
	}
}
