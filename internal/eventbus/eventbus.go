// bmcd is a BMC-resident Redfish service.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package eventbus implements the Redfish event/subscription bus (§4.8):
// a subscription set filtered by registry prefix and message key,
// wrapping matching messages in the standard Event resource and
// delivering them to each subscriber's Sink. Grounded on
// original_source/redfish-core/include/event_service_mgr.hpp for the
// filter contract and per-subscription monotonic event Id.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"bmcd/internal/ojson"
	"bmcd/internal/registry"
	"bmcd/internal/taskengine"
)

// Sink delivers one already-filtered Event document to a single
// subscription's destination. Concrete implementations: HTTPSink (POST)
// and SSESink (text/event-stream). Abstract per spec.md §4.8: "the sink
// is a collaborator."
type Sink interface {
	Deliver(ctx context.Context, event *ojson.Object) error
}

// Subscription is one registered event destination.
type Subscription struct {
	ID               string
	Destination      string
	Protocol         string
	Context          string
	RegistryPrefixes []string // empty = all
	MessageKeys      []string // empty = all
	Headers          map[string]string

	sink    Sink
	nextSeq uint64
	mu      sync.Mutex
}

func (s *Subscription) matches(registryPrefix, messageKey string) bool {
	if len(s.RegistryPrefixes) > 0 && !contains(s.RegistryPrefixes, registryPrefix) {
		return false
	}
	if len(s.MessageKeys) > 0 && !contains(s.MessageKeys, messageKey) {
		return false
	}
	return true
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

// Bus holds the live subscription set and publishes matching events to
// each subscriber's sink. All mutation happens under mu: spec.md's
// single-reactor assumption doesn't hold over net/http's goroutine-per-
// request model (SPEC_FULL.md §5), so this package keeps its own lock
// rather than relying on external serialization.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// New returns an empty event bus.
func New() *Bus {
	return &Bus{subs: make(map[string]*Subscription)}
}

// Subscribe registers sub, attaching sink as its delivery target.
// Re-registering an existing id replaces the prior entry.
func (b *Bus) Subscribe(sub *Subscription, sink Sink) {
	sub.sink = sink
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[sub.ID] = sub
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Get returns the subscription by id.
func (b *Bus) Get(id string) (*Subscription, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.subs[id]
	return s, ok
}

// List returns every registered subscription.
func (b *Bus) List() []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		out = append(out, s)
	}
	return out
}

// Publish renders reg's message under key with args, filters it against
// every registered subscription, and delivers the Event resource to each
// match's sink. Delivery errors are logged, never propagated — a down
// subscriber must not block publication to the rest (spec.md §5: "across
// subscriptions, no ordering [or reliability] is guaranteed").
func (b *Bus) Publish(ctx context.Context, reg *registry.Registry, key string, args ...string) {
	entry := reg.BuildLogEntry(key, args...)
	if entry == nil {
		slog.Warn("eventbus: dropping publish for unknown message", "prefix", reg.Header.Prefix, "key", key)
		return
	}

	b.mu.RLock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(reg.Header.Prefix, key) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		deliverOne(ctx, s, entry)
	}
}

func deliverOne(ctx context.Context, s *Subscription, entry *ojson.Object) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	sink := s.sink
	s.mu.Unlock()

	if sink == nil {
		return
	}

	event := ojson.NewObject().
		Set("@odata.type", "#Event.v1_4_0.Event").
		Set("Id", seq).
		Set("Name", "Event Log").
		Set("Events", []any{entry})
	if s.Context != "" {
		event.Set("Context", s.Context)
	}

	if err := sink.Deliver(ctx, event); err != nil {
		slog.Warn("eventbus: delivery failed", "subscription", s.ID, "destination", s.Destination, "error", err)
	}
}

// TaskNotifier adapts Bus to taskengine.Notifier: every task lifecycle
// transition is published through the compiled-in Task event registry
// with origin "/TaskService/Tasks/<id>" implicit in args[0] (the task
// id the Engine already threads through Notify).
type TaskNotifier struct {
	Bus *Bus
}

// Notify implements taskengine.Notifier.
func (n TaskNotifier) Notify(reg *registry.Registry, key string, args []string) {
	n.Bus.Publish(context.Background(), reg, key, args...)
}

var _ taskengine.Notifier = TaskNotifier{}
