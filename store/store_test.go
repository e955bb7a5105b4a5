package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "dashboard.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, path
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAPIKey_Roundtrip(t *testing.T) {
	s, _ := openTestStore(t)

	if _, ok := s.APIKey(); ok {
		t.Fatal("fresh store must have no api key")
	}

	if err := s.SetAPIKey("sk-test-123"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}

	key, ok := s.APIKey()
	if !ok || key != "sk-test-123" {
		t.Fatalf("expected persisted key, got %q (%v)", key, ok)
	}
}

func TestSetAPIKey_RejectsEmpty(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.SetAPIKey(""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestSubscriptions_Roundtrip(t *testing.T) {
	s, _ := openTestStore(t)

	subs, err := s.Subscriptions()
	if err != nil || subs != nil {
		t.Fatalf("fresh store must have no subscriptions, got %v (%v)", subs, err)
	}

	want := []Subscription{
		{ID: "sub-1", Name: "Coffee club", Amount: "9.99", Currency: "USD", Interval: "monthly"},
		{ID: "sub-2", Name: "Newsletter", Amount: "3.00", Currency: "USD", Interval: "weekly"},
	}
	if err := s.SetSubscriptions(want); err != nil {
		t.Fatalf("SetSubscriptions failed: %v", err)
	}

	got, err := s.Subscriptions()
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.SetAPIKey("sk-test-123"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	key, ok := reopened.APIKey()
	if !ok || key != "sk-test-123" {
		t.Fatalf("key did not survive reopen, got %q (%v)", key, ok)
	}
}

func TestClear_RemovesEverything(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.SetAPIKey("sk-test-123"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}
	if err := s.SetSubscriptions([]Subscription{{ID: "sub-1"}}); err != nil {
		t.Fatalf("SetSubscriptions failed: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, ok := s.APIKey(); ok {
		t.Fatal("api key survived Clear")
	}
	subs, err := s.Subscriptions()
	if err != nil || len(subs) != 0 {
		t.Fatalf("subscriptions survived Clear: %v (%v)", subs, err)
	}
}
