package handlers

import (
	"io"
	"os"
	"testing"

	"github.com/google/logger"
)

func TestMain(m *testing.M) {
	l := logger.Init("handlers-test", false, false, io.Discard)
	code := m.Run()
	l.Close()
	os.Exit(code)
}
