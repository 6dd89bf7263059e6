package shared

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello")
	if buf.Len() == 0 {
		t.Error("expected log output")
	}

	if logger := NewLogger(nil); logger == nil {
		t.Error("nil writer should fall back to stderr")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	child := WithLogger(logger, "job_id", 42)

	child.Info("processing")
	if !bytes.Contains(buf.Bytes(), []byte("job_id")) {
		t.Errorf("expected job_id field in output, got %s", buf.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	SetLogLevel(logger, log.ErrorLevel)

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info should be suppressed at error level, got %s", buf.String())
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Error("generated IDs should be unique")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid v4 string, got %s", a)
	}
}

func TestSentinelErrors(t *testing.T) {
	wrapped := errors.Join(ErrInvalidURL, errors.New("bad host"))
	if !errors.Is(wrapped, ErrInvalidURL) {
		t.Error("wrapped error should match sentinel")
	}
}
