package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeNotFound, "shape not found")
	wrapped := fmt.Errorf("load shape: %w", base)

	if !errors.Is(wrapped, New(CodeNotFound, "different message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(wrapped, New(CodeShapeEmptyID, "")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorageUnavailable, "put shape", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "put shape" {
		t.Fatalf("message = %q, want %q", err.Error(), "put shape")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "domain error", err: New(CodeCatalogInvalidPreset, "bad preset"), want: CodeCatalogInvalidPreset},
		{name: "wrapped domain error", err: fmt.Errorf("outer: %w", New(CodeNotFound, "missing")), want: CodeNotFound},
		{name: "plain error", err: errors.New("plain"), want: CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Fatalf("code = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := WithMetadata(CodePeerRejected, "peer rejected", map[string]string{"peer": "p1"})
	if !IsCode(err, CodePeerRejected) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(err, CodePeerUnknown) {
		t.Fatal("expected IsCode not to match a different code")
	}
}
