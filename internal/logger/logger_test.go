package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(&buf, "debug", "json")
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}

	log.WithField("cart_id", 3).Info("hello")
	entry := map[string]any{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["cart_id"].(float64) != 3 {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNew_TextFormatAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(&buf, "loud", "TEXT")
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected fallback to info, got %s", log.GetLevel())
	}
	if !strings.Contains(buf.String(), "Invalid log level") {
		t.Fatalf("expected a warning about the level, got %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("text format must not emit json")
	}
}
