package app

import (
	"testing"

	"github.com/rs/zerolog"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "default level when no flags set",
			config:   &Config{},
			expected: "info",
		},
		{
			name:     "verbose flag sets debug",
			config:   &Config{Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet flag sets warn",
			config:   &Config{Quiet: true},
			expected: "warn",
		},
		{
			name:     "quiet wins over verbose",
			config:   &Config{Verbose: true, Quiet: true},
			expected: "warn",
		},
		{
			name:     "explicit log-level overrides both flags",
			config:   &Config{LogLevel: "error", Verbose: true, Quiet: true},
			expected: "error",
		},
		{
			name:     "invalid log-level falls back to info",
			config:   &Config{LogLevel: "loud"},
			expected: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineLogLevel(tt.config); got != tt.expected {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestNewLogger verifies the logger level follows the configuration.
func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected zerolog.Level
	}{
		{"info", &Config{LogFormat: "json", LogOutput: "stderr"}, zerolog.InfoLevel},
		{"verbose", &Config{Verbose: true, LogFormat: "json", LogOutput: "stderr"}, zerolog.DebugLevel},
		{"explicit", &Config{LogLevel: "error", LogFormat: "json", LogOutput: "stderr"}, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.config)
			if logger.GetLevel() != tt.expected {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.expected)
			}
		})
	}
}
