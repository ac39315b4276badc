package services

import (
	"context"
	"log"
	"sync"

	"studybuddy/backend/models"
)

type AuthEventType string

const (
	EventSignedIn  AuthEventType = "SIGNED_IN"
	EventSignedOut AuthEventType = "SIGNED_OUT"
)

type AuthEvent struct {
	Type    AuthEventType
	UserID  string
	Session *models.Session
}

// AuthStateBroker fans auth events out to subscribers. Subscribers run
// synchronously on the publishing goroutine.
type AuthStateBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(AuthEvent)
}

func NewAuthStateBroker() *AuthStateBroker {
	return &AuthStateBroker{subs: make(map[int]func(AuthEvent))}
}

// Subscribe registers fn and returns the function that removes it.
func (b *AuthStateBroker) Subscribe(fn func(AuthEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *AuthStateBroker) Publish(evt AuthEvent) {
	b.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// ProfileCache holds the profile of every signed-in user, kept current by
// auth events.
type ProfileCache struct {
	mu          sync.RWMutex
	profiles    map[string]*models.Profile
	unsubscribe func()
}

func NewProfileCache(broker *AuthStateBroker) *ProfileCache {
	c := &ProfileCache{profiles: make(map[string]*models.Profile)}
	c.unsubscribe = broker.Subscribe(c.handle)
	return c
}

func (c *ProfileCache) handle(evt AuthEvent) {
	switch evt.Type {
	case EventSignedIn:
		profile, err := GetUserProfile(context.Background(), evt.UserID)
		if err != nil {
			log.Printf("Warning: could not load profile for %s: %v", evt.UserID, err)
			return
		}
		c.mu.Lock()
		c.profiles[evt.UserID] = profile
		c.mu.Unlock()
	case EventSignedOut:
		c.Invalidate(evt.UserID)
	}
}

// Get returns the cached profile, loading it on a miss.
func (c *ProfileCache) Get(ctx context.Context, uid string) (*models.Profile, error) {
	c.mu.RLock()
	profile, ok := c.profiles[uid]
	c.mu.RUnlock()
	if ok {
		return profile, nil
	}

	profile, err := GetUserProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.profiles[uid] = profile
	c.mu.Unlock()
	return profile, nil
}

func (c *ProfileCache) Cached(uid string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.profiles[uid]
	return ok
}

func (c *ProfileCache) Invalidate(uid string) {
	c.mu.Lock()
	delete(c.profiles, uid)
	c.mu.Unlock()
}

func (c *ProfileCache) Close() {
	c.unsubscribe()
}
