package ratelimit

import "testing"

func TestLimiterConsumesCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0) {
			t.Fatalf("request %d should pass within capacity", i)
		}
	}
	if l.Allow("k", 3, 0) {
		t.Fatal("request over capacity should be rejected")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatal("first request on a should pass")
	}
	if l.Allow("a", 1, 0) {
		t.Fatal("second request on a should be rejected")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatal("b must have its own bucket")
	}
}
