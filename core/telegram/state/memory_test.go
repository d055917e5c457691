package state

import (
	"testing"
	"time"
)

func TestActiveCount(t *testing.T) {
	mgr := NewMemoryManager()
	if mgr.ActiveCount() != 0 {
		t.Fatalf("expected 0, got %d", mgr.ActiveCount())
	}

	mgr.SetState(1, State("one"))
	mgr.SetState(2, State("two"))
	mgr.SetState(3, StateIdle)
	if got := mgr.ActiveCount(); got != 2 {
		t.Fatalf("expected 2 active sessions, got %d", got)
	}

	mgr.Clear(1)
	if got := mgr.ActiveCount(); got != 1 {
		t.Fatalf("expected 1 active session, got %d", got)
	}
}

func TestExpiredSince(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.SetState(1, State("busy"))
	mgr.SetState(2, StateIdle)

	if got := mgr.ExpiredSince(time.Minute); len(got) != 0 {
		t.Fatalf("fresh session must not expire: %v", got)
	}

	time.Sleep(15 * time.Millisecond)
	got := mgr.ExpiredSince(10 * time.Millisecond)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected user 1 to expire, got %v", got)
	}
}

func TestSetStateRefreshesExpiry(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.SetState(1, State("first"))
	time.Sleep(15 * time.Millisecond)
	mgr.SetState(1, State("second"))

	if got := mgr.ExpiredSince(10 * time.Millisecond); len(got) != 0 {
		t.Fatalf("transition must reset the expiry clock: %v", got)
	}
}

func TestTempDataLifecycle(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.SetTemp(1, "key", []string{"a", "b"})

	val, ok := mgr.GetTemp(1, "key")
	if !ok {
		t.Fatal("expected value")
	}
	if items, ok := val.([]string); !ok || len(items) != 2 {
		t.Fatalf("unexpected value: %#v", val)
	}

	mgr.ClearTemp(1, "key")
	if _, ok := mgr.GetTemp(1, "key"); ok {
		t.Fatal("value must be gone after ClearTemp")
	}

	mgr.SetTemp(2, "n", int64(7))
	if n, ok := mgr.GetTempInt64(2, "n"); !ok || n != 7 {
		t.Fatalf("GetTempInt64: %v, %v", n, ok)
	}
}

func TestClearRemovesSession(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.SetState(1, State("busy"))
	mgr.SetTemp(1, "key", "value")

	mgr.Clear(1)
	if mgr.HasState(1) {
		t.Fatal("state must be gone")
	}
	if _, ok := mgr.GetTemp(1, "key"); ok {
		t.Fatal("temp data must be gone")
	}
	if mgr.GetState(1) != StateIdle {
		t.Fatalf("expected idle, got %q", mgr.GetState(1))
	}
}
