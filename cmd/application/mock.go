package application

import (
	"github.com/rs/zerolog"

	"github.com/ucc-astro/ucc"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	SettingsValue Settings
	ClientFunc    func(...ucc.Option) (ucc.Client, error)
	LoggerFunc    func() *zerolog.Logger
	VersionValue  string
}

// Settings returns SettingsValue.
func (m *Mock) Settings() Settings {
	return m.SettingsValue
}

// Client returns a client using the mock function or an empty client.
func (m *Mock) Client(opts ...ucc.Option) (ucc.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return ucc.New(opts...)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Version returns VersionValue or "dev".
func (m *Mock) Version() string {
	if m.VersionValue != "" {
		return m.VersionValue
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

var _ Application = (*Mock)(nil)
