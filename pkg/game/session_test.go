package game

import (
	"testing"

	"github.com/shellstorm/server/pkg/config"
)

func TestNewSessionDistinctIDs(t *testing.T) {
	cfg := config.GetDefaultConfig()

	a := NewSession(cfg, NopBroadcaster{})
	b := NewSession(cfg, NopBroadcaster{})
	defer a.Close()
	defer b.Close()

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected distinct non-empty session ids, got %q and %q", a.ID, b.ID)
	}
}

func TestSessionCloseDisposes(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Helicopters.SimAheadTime = 5

	s := NewSession(cfg, NopBroadcaster{})
	if _, ok := s.Helicopters.Spawn(); !ok {
		t.Fatal("Spawn in a fresh session failed")
	}

	s.Close()

	if _, ok := s.Helicopters.Spawn(); ok {
		t.Error("Spawn after session close should fail")
	}
	// Second close is a no-op
	s.Close()
}
