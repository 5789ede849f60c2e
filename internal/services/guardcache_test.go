package services

import (
	"errors"
	"testing"
	"time"
)

func TestGuardCacheCachesWithinTTL(t *testing.T) {
	loads := 0
	cache := NewGuardCache(time.Minute, func(userID string) (GuardEntry, error) {
		loads++
		return GuardEntry{Status: "ACTIVE", Roles: []string{"MEMBER"}}, nil
	})

	for i := 0; i < 3; i++ {
		entry, err := cache.Get("user-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if entry.Status != "ACTIVE" {
			t.Fatalf("status = %q", entry.Status)
		}
	}
	if loads != 1 {
		t.Fatalf("loads = %d, want 1", loads)
	}
}

func TestGuardCacheReloadsAfterExpiry(t *testing.T) {
	loads := 0
	cache := NewGuardCache(time.Minute, func(userID string) (GuardEntry, error) {
		loads++
		return GuardEntry{Status: "ACTIVE"}, nil
	})
	current := time.Now()
	cache.now = func() time.Time { return current }

	if _, err := cache.Get("user-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	current = current.Add(2 * time.Minute)
	if _, err := cache.Get("user-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if loads != 2 {
		t.Fatalf("loads = %d, want 2", loads)
	}
}

func TestGuardCacheInvalidateForcesReload(t *testing.T) {
	status := "ACTIVE"
	cache := NewGuardCache(time.Minute, func(userID string) (GuardEntry, error) {
		return GuardEntry{Status: status}, nil
	})

	entry, _ := cache.Get("user-1")
	if entry.Status != "ACTIVE" {
		t.Fatalf("status = %q", entry.Status)
	}
	status = "SUSPENDED"
	cache.Invalidate("user-1")
	entry, _ = cache.Get("user-1")
	if entry.Status != "SUSPENDED" {
		t.Fatalf("status after invalidate = %q", entry.Status)
	}
}

func TestGuardCachePropagatesLoadError(t *testing.T) {
	cache := NewGuardCache(time.Minute, func(userID string) (GuardEntry, error) {
		return GuardEntry{}, errors.New("db down")
	})
	if _, err := cache.Get("user-1"); err == nil {
		t.Fatal("expected load error")
	}
	if cache.Len() != 0 {
		t.Fatalf("len = %d, want 0", cache.Len())
	}
}

func TestGuardCacheSweepDropsExpired(t *testing.T) {
	cache := NewGuardCache(time.Minute, func(userID string) (GuardEntry, error) {
		return GuardEntry{Status: "ACTIVE"}, nil
	})
	current := time.Now()
	cache.now = func() time.Time { return current }

	_, _ = cache.Get("user-1")
	_, _ = cache.Get("user-2")
	if cache.Len() != 2 {
		t.Fatalf("len = %d, want 2", cache.Len())
	}
	current = current.Add(2 * time.Minute)
	cache.Sweep()
	if cache.Len() != 0 {
		t.Fatalf("len after sweep = %d, want 0", cache.Len())
	}
}
