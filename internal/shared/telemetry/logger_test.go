package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Error("rating.failed", map[string]any{"questionId": "q1", "msg": "ignored"})

	line := strings.TrimSpace(buf.String())
	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("expected json line, got %q: %v", line, err)
	}
	if got["level"] != "error" {
		t.Fatalf("expected level error, got %v", got["level"])
	}
	if got["msg"] != "rating.failed" {
		t.Fatalf("expected msg to win over fields, got %v", got["msg"])
	}
	if got["questionId"] != "q1" {
		t.Fatalf("expected questionId field, got %v", got["questionId"])
	}
	if _, ok := got["ts"]; !ok {
		t.Fatalf("expected ts field")
	}
}
