package memory

import (
	"context"
	"testing"
)

func TestTokenStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()

	if got, _ := s.Load(ctx); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
	if err := s.Save(ctx, "tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := s.Load(ctx); got != "tok" {
		t.Fatalf("expected tok, got %q", got)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, _ := s.Load(ctx); got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
