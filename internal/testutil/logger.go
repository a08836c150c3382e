package testutil

import (
	"io"

	"github.com/pkondratev/auth-server/internal/logger"
)

// MakeNoopLogger returns a logger that discards everything, for tests that
// need a logger but not its output.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithOutput(io.Discard, 0)
}
