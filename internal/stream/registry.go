package stream

import (
	"sort"
	"sync"

	"MarketPulse/internal/domain/models"
)

// Registry tracks confirmed subscriptions by id. The stream client is the only
// writer; reads return copies so callers can iterate while the client mutates
// (e.g. resubscribing from inside an event handler).
type Registry struct {
	mu   sync.RWMutex
	subs map[string]models.Subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]models.Subscription)}
}

// Add stores sub, replacing any existing entry with the same id.
func (r *Registry) Add(sub models.Subscription) {
	r.mu.Lock()
	r.subs[sub.ID] = sub
	r.mu.Unlock()
}

// Remove deletes the subscription and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[id]
	delete(r.subs, id)
	return ok
}

// Get returns the subscription with the given id.
func (r *Registry) Get(id string) (models.Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subs[id]
	return s, ok
}

// List returns all subscriptions ordered by subscription time, then id.
func (r *Registry) List() []models.Subscription {
	r.mu.RLock()
	out := make([]models.Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubscribedAt.Equal(out[j].SubscribedAt) {
			return out[i].SubscribedAt.Before(out[j].SubscribedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ReplaceAll reconciles the registry against a server-pushed subscription list.
func (r *Registry) ReplaceAll(subs []models.Subscription) {
	next := make(map[string]models.Subscription, len(subs))
	for _, s := range subs {
		next[s.ID] = s
	}
	r.mu.Lock()
	r.subs = next
	r.mu.Unlock()
}

// Clear removes every subscription.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.subs = make(map[string]models.Subscription)
	r.mu.Unlock()
}

// Len returns the number of active subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// SymbolsFor returns the union of subscribed symbols for a data type.
func (r *Registry) SymbolsFor(dt models.DataType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range r.subs {
		if s.DataType != dt {
			continue
		}
		for _, sym := range s.Symbols {
			if _, ok := seen[sym]; ok {
				continue
			}
			seen[sym] = struct{}{}
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}
