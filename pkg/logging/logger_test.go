package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// parseEntry decodes a single log line for inspection
func parseEntry(t *testing.T, line string) LogEntry {
	t.Helper()

	var entry LogEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Failed to parse log line %q: %v", line, err)
	}
	return entry
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines at WARN level, got %d", len(lines))
	}

	first := parseEntry(t, lines[0])
	if first.Level != "WARN" {
		t.Errorf("Expected first line at WARN, got %s", first.Level)
	}
}

func TestJSONLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("device scored", Device("192.168.1.7"), Score(82.5))

	entry := parseEntry(t, strings.TrimSpace(buf.String()))
	if entry.Fields["device"] != "192.168.1.7" {
		t.Errorf("Expected device field, got %v", entry.Fields["device"])
	}
	if entry.Fields["score"] != 82.5 {
		t.Errorf("Expected score field 82.5, got %v", entry.Fields["score"])
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Subnet("10.0.0.0/24"))
	child.Info("assessment started", Tier(1))

	entry := parseEntry(t, strings.TrimSpace(buf.String()))
	if entry.Fields["subnet"] != "10.0.0.0/24" {
		t.Errorf("Expected inherited subnet field, got %v", entry.Fields["subnet"])
	}
	if entry.Fields["tier"] != float64(1) {
		t.Errorf("Expected tier field 1, got %v", entry.Fields["tier"])
	}
}

func TestJSONLogger_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Error("collection failed", Error(errTest))

	entry := parseEntry(t, strings.TrimSpace(buf.String()))
	if entry.Fields["error"] != "snmp unreachable" {
		t.Errorf("Expected error field, got %v", entry.Fields["error"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

var errTest = errTestType{}

type errTestType struct{}

func (errTestType) Error() string { return "snmp unreachable" }
