package session

import (
	"context"
	"testing"

	"github.com/kadapaimran/grocery-storefront/pkg/localstore"
)

func TestSetAuthenticatedNotifiesSubscribers(t *testing.T) {
	c, err := NewContainer(localstore.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	var seen []State
	c.Subscribe(func(s State) { seen = append(seen, s) })

	ctx := context.Background()
	c.SetAuthenticated(ctx, "alice")
	c.Clear(ctx)

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if !seen[0].Authenticated || seen[0].Username != "alice" {
		t.Fatalf("first notification = %+v", seen[0])
	}
	if seen[1].Authenticated {
		t.Fatalf("second notification should be signed out, got %+v", seen[1])
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	c, err := NewContainer(localstore.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	calls := 0
	cancel := c.Subscribe(func(State) { calls++ })
	cancel()

	c.SetAuthenticated(context.Background(), "alice")
	if calls != 0 {
		t.Fatalf("expected no notifications after unsubscribe, got %d", calls)
	}
}

func TestSessionSurvivesRehydration(t *testing.T) {
	mem := localstore.NewMemory()

	first, err := NewContainer(mem, nil)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	first.SetAuthenticated(context.Background(), "bob")

	second, err := NewContainer(mem, nil)
	if err != nil {
		t.Fatalf("NewContainer after rehydrate: %v", err)
	}
	state := second.Snapshot()
	if !state.Authenticated || state.Username != "bob" {
		t.Fatalf("rehydrated state = %+v", state)
	}
}
