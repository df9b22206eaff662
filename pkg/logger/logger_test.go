package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func newBufferedLogger(level Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{
		Level:   level,
		Writer:  &buf,
		NoColor: true,
	})
	return l, &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferedLogger(WarnLevel)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("Messages below the level were written: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("Messages at or above the level were dropped: %q", out)
	}
}

func TestFieldsAndPrefixFormatting(t *testing.T) {
	l, buf := newBufferedLogger(InfoLevel)

	l.WithPrefix("hub").WithFields(map[string]interface{}{
		"game": "abc",
		"id":   7,
	}).Infof("joined %s", "room")

	out := buf.String()
	if !strings.Contains(out, "[hub]") {
		t.Errorf("Expected prefix in output, got %q", out)
	}
	// Fields print in sorted key order
	if !strings.Contains(out, "game=abc id=7") {
		t.Errorf("Expected sorted fields in output, got %q", out)
	}
	if !strings.Contains(out, "joined room") {
		t.Errorf("Expected formatted message in output, got %q", out)
	}
}

func TestDerivedLoggerDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferedLogger(InfoLevel)

	_ = l.WithField("child", true)
	l.Info("parent message")

	if strings.Contains(buf.String(), "child=true") {
		t.Errorf("Parent logger inherited a derived field: %q", buf.String())
	}
}

func TestConcurrentSetLevelAndLog(t *testing.T) {
	l, _ := newBufferedLogger(InfoLevel)
	inst := l.(*logger)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				inst.mu.Lock()
				inst.level = Level(j % int(FatalLevel))
				inst.mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Info("tick")
				l.WithField("n", j).Debug("tick")
			}
		}()
	}
	wg.Wait()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"nonsense", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q): expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}
