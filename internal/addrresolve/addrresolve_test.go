package addrresolve

import (
	"context"
	"testing"
)

func TestResolveLiteralIPv4(t *testing.T) {
	addr, err := Resolve(context.Background(), "192.0.2.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "192.0.2.1" {
		t.Errorf("got %q, want %q", addr, "192.0.2.1")
	}
}

func TestResolveLiteralIPv6(t *testing.T) {
	addr, err := Resolve(context.Background(), "::1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "::1" {
		t.Errorf("got %q, want %q", addr, "::1")
	}
}
