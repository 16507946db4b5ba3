package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities/timeutil"
	"github.com/rs/zerolog"
)

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   logger.LoggerConfig
		hidden   string
		expected string
	}{
		{
			name:     "Default log level when no level specified",
			config:   logger.LoggerConfig{LogLevel: zerolog.NoLevel},
			hidden:   "debug",
			expected: "info",
		},
		{
			name:     "Debug log level",
			config:   logger.LoggerConfig{LogLevel: zerolog.DebugLevel},
			expected: "debug",
		},
		{
			name:     "Warn log level",
			config:   logger.LoggerConfig{LogLevel: zerolog.WarnLevel},
			hidden:   "info",
			expected: "warn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.NewFromConfig(tt.config).WithOutput(&buf)

			l.Debug("debug")
			l.Info("info")
			l.Warn("warn")

			output := buf.String()
			if !strings.Contains(output, `"message":"`+tt.expected+`"`) {
				t.Errorf("Expected %s message in output, got: %s", tt.expected, output)
			}
			if tt.hidden != "" && strings.Contains(output, `"message":"`+tt.hidden+`"`) {
				t.Errorf("Did not expect %s message in output, got: %s", tt.hidden, output)
			}
		})
	}
}

func TestLoggerWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New().WithOutput(&buf).WithLevel(zerolog.ErrorLevel)

	l.Info("info message")
	l.Error(errors.New("selector deactivated"), "error message")

	output := buf.String()
	if strings.Contains(output, "info message") {
		t.Error("Info message should not appear when level is set to Error")
	}
	if !strings.Contains(output, "error message") || !strings.Contains(output, "selector deactivated") {
		t.Errorf("Expected error message with cause, got: %s", output)
	}
}

func TestLoggerFormatting(t *testing.T) {
	tests := []struct {
		name     string
		write    func(l *logger.Logger)
		expected string
		level    string
	}{
		{"Debugf", func(l *logger.Logger) { l.Debugf("selector %x", []byte{0xaa, 0xbb}) }, "selector aabb", "debug"},
		{"Infof", func(l *logger.Logger) { l.Infof("registered %d verifiers", 2) }, "registered 2 verifiers", "info"},
		{"Warnf", func(l *logger.Logger) { l.Warnf("estop by %s", "owner") }, "estop by owner", "warn"},
		{"Errorf", func(l *logger.Logger) { l.Errorf(errors.New("boom"), "verify %s", "failed") }, "verify failed", "error"},
		{"Logf", func(l *logger.Logger) { l.Logf(zerolog.WarnLevel, "custom %d", 42) }, "custom 42", "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.New().WithOutput(&buf).WithLevel(zerolog.DebugLevel)

			tt.write(l)

			output := buf.String()
			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected formatted output %q, got: %s", tt.expected, output)
			}
			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("Expected level %s, got: %s", tt.level, output)
			}
		})
	}
}

func TestLoggerWithField(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New().WithOutput(&buf).WithField("selector", "aabbccdd")

	l.Info("entry loaded")

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	if entry["selector"] != "aabbccdd" {
		t.Errorf("Expected selector field, got: %v", entry)
	}
}

func TestLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New().WithOutput(&buf).WithLevel(zerolog.InfoLevel)

	var received []string
	logger.AddSinkToLoggerInstance(l, func(msg string, level zerolog.Level, _ timeutil.TimeUTC) {
		received = append(received, level.String()+":"+msg)
	})

	l.Debug("filtered")
	l.Info("kept")
	l.Warnf("kept %s", "formatted")

	if len(received) != 2 {
		t.Fatalf("Expected 2 sink messages, got %d: %v", len(received), received)
	}
	if received[0] != "info:kept" || received[1] != "warn:kept formatted" {
		t.Errorf("Unexpected sink messages: %v", received)
	}
}

func TestLoggerConfigConvertToDomain(t *testing.T) {
	var cfg logger.LoggerConfigJson
	if err := json.Unmarshal([]byte(`{"log_level": 2}`), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got := cfg.ConvertToDomain().LogLevel; got != zerolog.WarnLevel {
		t.Errorf("Expected LogLevel %v, got %v", zerolog.WarnLevel, got)
	}
}

func TestDefaultLogger(t *testing.T) {
	logger.InitDefaultLogger(logger.GlobalLoggerConfig{
		Args: []logger.LoggerArg{
			{Key: "service", Value: "verifier-router-test"},
		},
	})

	if logger.Default() == nil {
		t.Fatal("Expected default logger to exist, got nil")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New().WithOutput(&buf)

	l.Info("test json format")

	var logEntry map[string]interface{}
	err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &logEntry)
	if err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}

	if logEntry["level"] != "info" {
		t.Error("Expected level field to be 'info'")
	}
	if logEntry["message"] != "test json format" {
		t.Error("Expected message field to match input")
	}
	if _, ok := logEntry["time"]; !ok {
		t.Error("Expected time field to be present")
	}
}
