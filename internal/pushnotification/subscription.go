package pushnotification

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Subscription struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriptions holds push subscriptions for the lifetime of the session
// daemon.
type Subscriptions struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{subs: make(map[string]*Subscription)}
}

// Upsert registers a subscription, replacing the keys of an existing one
// with the same endpoint.
func (s *Subscriptions) Upsert(_ context.Context, endpoint, p256dh, auth string) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.Endpoint == endpoint {
			sub.P256dhKey = p256dh
			sub.AuthKey = auth
			return sub
		}
	}
	sub := &Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  endpoint,
		P256dhKey: p256dh,
		AuthKey:   auth,
		CreatedAt: time.Now(),
	}
	s.subs[sub.ID] = sub
	return sub
}

func (s *Subscriptions) List(_ context.Context) []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		copied := *sub
		out = append(out, &copied)
	}
	return out
}

func (s *Subscriptions) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

func (s *Subscriptions) DeleteByEndpoint(_ context.Context, endpoint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subs {
		if sub.Endpoint == endpoint {
			delete(s.subs, id)
			return true
		}
	}
	return false
}
