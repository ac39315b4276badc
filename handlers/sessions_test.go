package handlers

import (
	"testing"
	"time"
)

func TestSessionRegistryOwnership(t *testing.T) {
	reg := NewSessionRegistry[string](time.Minute, nil)

	owned := reg.Create("user-1", "mine")
	anon := reg.Create("", "shared")

	testCases := []struct {
		name  string
		id    string
		owner string
		found bool
	}{
		{"Owner reads own session", owned, "user-1", true},
		{"Other user is refused", owned, "user-2", false},
		{"Anonymous caller is refused", owned, "", false},
		{"Anonymous session is shared", anon, "user-2", true},
		{"Unknown id", "missing", "user-1", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := reg.Get(tc.id, tc.owner)
			if ok != tc.found {
				t.Errorf("Expected found=%v, got %v", tc.found, ok)
			}
		})
	}
}

func TestSessionRegistrySweep(t *testing.T) {
	var evicted []string
	reg := NewSessionRegistry(time.Minute, func(id string, v int) { evicted = append(evicted, id) })
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	reg.now = func() time.Time { return clock }

	idle := reg.Create("u", 1)
	active := reg.Create("u", 2)

	clock = start.Add(50 * time.Second)
	reg.Get(active, "u")

	if n := reg.Sweep(start.Add(90 * time.Second)); n != 1 {
		t.Fatalf("Expected 1 session swept, got %d", n)
	}
	if len(evicted) != 1 || evicted[0] != idle {
		t.Errorf("Expected idle session evicted, got %v", evicted)
	}
	if _, ok := reg.Get(active, "u"); !ok {
		t.Errorf("Expected recently used session to survive")
	}

	reg.Delete(active)
	if reg.Len() != 0 || len(evicted) != 2 {
		t.Errorf("Expected delete to evict, got len=%d evicted=%v", reg.Len(), evicted)
	}
}
