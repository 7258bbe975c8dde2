package ident

import (
	"strings"
	"testing"
)

func TestNewGameID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		id := NewGameID()
		if len(id) != GameIDLength {
			t.Fatalf("expected %d characters, got %q", GameIDLength, id)
		}
		for _, r := range id {
			if !strings.ContainsRune(gameIDAlphabet, r) {
				t.Fatalf("unexpected character %q in %q", r, id)
			}
		}
		seen[id] = struct{}{}
	}
	if len(seen) < 100 {
		t.Fatalf("expected mostly unique ids, got %d distinct of 200", len(seen))
	}
}

func TestNewPin(t *testing.T) {
	for i := 0; i < 100; i++ {
		pin := NewPin()
		if len(pin) != 4 {
			t.Fatalf("expected 4 digits, got %q", pin)
		}
		for _, r := range pin {
			if r < '0' || r > '9' {
				t.Fatalf("expected digits only, got %q", pin)
			}
		}
	}
}

func TestNewPlayerIDUnique(t *testing.T) {
	a := NewPlayerID()
	b := NewPlayerID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
