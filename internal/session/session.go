package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kadapaimran/grocery-storefront/pkg/localstore"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
)

// State is the persisted authentication snapshot.
type State struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// Listener receives the new state after every change.
type Listener func(State)

// Container holds the session state and notifies registered listeners on
// every change. It replaces ambient cross-component change signals with
// explicit subscription.
type Container struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextSub   int

	persist localstore.Store
	logger  *logger.Logger
}

// NewContainer rehydrates session state from the local store.
func NewContainer(persist localstore.Store, logg *logger.Logger) (*Container, error) {
	if persist == nil {
		return nil, fmt.Errorf("local store required")
	}

	c := &Container{
		persist:   persist,
		logger:    logg,
		listeners: map[int]Listener{},
	}
	if err := persist.Load(localstore.KeySession, &c.state); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		return nil, fmt.Errorf("rehydrating session: %w", err)
	}
	return c, nil
}

// Snapshot returns the current state.
func (c *Container) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetAuthenticated marks the session signed in for the given username.
func (c *Container) SetAuthenticated(ctx context.Context, username string) {
	c.apply(ctx, State{Authenticated: true, Username: username})
}

// Clear signs the session out.
func (c *Container) Clear(ctx context.Context) {
	c.apply(ctx, State{})
}

// Subscribe registers a listener for state changes and returns an
// unsubscribe func. The listener is not called with the current state.
func (c *Container) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Container) apply(ctx context.Context, next State) {
	c.mu.Lock()
	c.state = next
	if err := c.persist.Save(localstore.KeySession, c.state); err != nil && c.logger != nil {
		c.logger.Error(ctx, "persisting session", err)
	}
	notify := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		notify = append(notify, fn)
	}
	c.mu.Unlock()

	for _, fn := range notify {
		fn(next)
	}
}
