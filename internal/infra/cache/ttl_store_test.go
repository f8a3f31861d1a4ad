package cache

import (
	"testing"
	"time"
)

func TestTTLStore(t *testing.T) {
	now := time.Now()
	s := NewTTLStore(time.Minute)
	s.now = func() time.Time { return now }

	t.Run("hit within ttl", func(t *testing.T) {
		s.Set("k", "v")
		got, ok := s.Get("k")
		if !ok || got != "v" {
			t.Fatalf("got %v/%v, want v/true", got, ok)
		}
	})

	t.Run("miss after ttl", func(t *testing.T) {
		s.Set("k", "v")
		now = now.Add(2 * time.Minute)
		if _, ok := s.Get("k"); ok {
			t.Fatal("entry should have expired")
		}
		if s.Len() != 0 {
			t.Fatal("expired entry should be dropped")
		}
	})

	t.Run("delete", func(t *testing.T) {
		s.Set("a", 1)
		s.Set("b", 2)
		s.Delete("a", "b")
		if _, ok := s.Get("a"); ok {
			t.Fatal("deleted entry should be gone")
		}
	})

	t.Run("set refreshes expiry", func(t *testing.T) {
		s.Set("k", "v1")
		now = now.Add(30 * time.Second)
		s.Set("k", "v2")
		now = now.Add(45 * time.Second)
		got, ok := s.Get("k")
		if !ok || got != "v2" {
			t.Fatalf("got %v/%v, want v2/true", got, ok)
		}
	})
}
