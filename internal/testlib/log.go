package testlib

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

type testingWriter struct {
	tb testing.TB
}

func (tw *testingWriter) Write(b []byte) (int, error) {
	tw.tb.Log(string(b))
	return len(b), nil
}

// MakeLogger creates a logger that routes output through the test framework,
// keeping log lines attached to the test that produced them.
func MakeLogger(tb testing.TB) log.FieldLogger {
	logger := log.New()
	logger.SetOutput(&testingWriter{tb})
	logger.SetLevel(log.TraceLevel)

	return logger
}
