package id

import (
	"strings"
	"testing"
)

func TestNewIDFormat(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("id length = %d, want 26", len(value))
	}
	if value != strings.ToLower(value) {
		t.Fatalf("expected lowercase id, got %q", value)
	}
	if strings.ContainsAny(value, "=/+") {
		t.Fatalf("expected URL-safe id, got %q", value)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		value, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if seen[value] {
			t.Fatalf("duplicate id %q", value)
		}
		seen[value] = true
	}
}

func TestMustNewID(t *testing.T) {
	if value := MustNewID(); len(value) != 26 {
		t.Fatalf("id length = %d, want 26", len(value))
	}
}
