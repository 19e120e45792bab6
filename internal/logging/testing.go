package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop(), config: DefaultConfig()}
}

// NewTestLogger returns a logger that writes through the test's log output.
func NewTestLogger(t zaptest.TestingT) *Logger {
	return &Logger{zap: zaptest.NewLogger(t), config: DefaultConfig()}
}
