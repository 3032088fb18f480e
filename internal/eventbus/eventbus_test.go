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

package eventbus

import (
	"context"
	"sync"
	"testing"

	"bmcd/internal/ojson"
	"bmcd/internal/registry"
)

type captureSink struct {
	mu     sync.Mutex
	events []*ojson.Object
}

func (s *captureSink) Deliver(ctx context.Context, event *ojson.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestPublishDeliversToUnfilteredSubscription(t *testing.T) {
	b := New()
	sink := &captureSink{}
	b.Subscribe(&Subscription{ID: "sub1"}, sink)

	b.Publish(context.Background(), registry.Task, "TaskStarted", "42")

	if sink.count() != 1 {
		t.Fatalf("count = %d, want 1", sink.count())
	}
}

func TestPublishHonorsRegistryPrefixFilter(t *testing.T) {
	b := New()
	sink := &captureSink{}
	b.Subscribe(&Subscription{ID: "sub1", RegistryPrefixes: []string{"Base"}}, sink)

	b.Publish(context.Background(), registry.Task, "TaskStarted", "42")
	if sink.count() != 0 {
		t.Fatalf("non-matching registry prefix should not deliver, got %d", sink.count())
	}

	b.Publish(context.Background(), registry.Base, "ResourceNotFound", "Task", "42")
	if sink.count() != 1 {
		t.Fatalf("matching registry prefix should deliver, got %d", sink.count())
	}
}

func TestPublishHonorsMessageKeyFilter(t *testing.T) {
	b := New()
	sink := &captureSink{}
	b.Subscribe(&Subscription{ID: "sub1", MessageKeys: []string{"TaskCompletedOK"}}, sink)

	b.Publish(context.Background(), registry.Task, "TaskStarted", "42")
	if sink.count() != 0 {
		t.Fatalf("non-matching key should not deliver, got %d", sink.count())
	}

	b.Publish(context.Background(), registry.Task, "TaskCompletedOK", "42")
	if sink.count() != 1 {
		t.Fatalf("matching key should deliver, got %d", sink.count())
	}
}

func TestPublishUnknownKeyDropsSilently(t *testing.T) {
	b := New()
	sink := &captureSink{}
	b.Subscribe(&Subscription{ID: "sub1"}, sink)

	b.Publish(context.Background(), registry.Task, "NoSuchMessage")

	if sink.count() != 0 {
		t.Fatalf("unknown message key must not be delivered, got %d", sink.count())
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	sink := &captureSink{}
	b.Subscribe(&Subscription{ID: "sub1"}, sink)
	b.Unsubscribe("sub1")

	b.Publish(context.Background(), registry.Task, "TaskStarted", "42")

	if sink.count() != 0 {
		t.Fatalf("unsubscribed sink must not receive events, got %d", sink.count())
	}
	if _, ok := b.Get("sub1"); ok {
		t.Fatalf("Get() should report the subscription gone after Unsubscribe")
	}
}

func TestDeliverOneAssignsMonotonicPerSubscriptionSeq(t *testing.T) {
	b := New()
	sink := &captureSink{}
	b.Subscribe(&Subscription{ID: "sub1"}, sink)

	b.Publish(context.Background(), registry.Task, "TaskStarted", "1")
	b.Publish(context.Background(), registry.Task, "TaskStarted", "2")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 delivered events, got %d", len(sink.events))
	}
	first, _ := sink.events[0].Get("Id")
	second, _ := sink.events[1].Get("Id")
	firstSeq, ok1 := first.(uint64)
	secondSeq, ok2 := second.(uint64)
	if !ok1 || !ok2 || secondSeq != firstSeq+1 {
		t.Fatalf("expected monotonic Id sequence, got %v then %v", first, second)
	}
}

func TestListReturnsAllSubscriptions(t *testing.T) {
	b := New()
	b.Subscribe(&Subscription{ID: "a"}, &captureSink{})
	b.Subscribe(&Subscription{ID: "b"}, &captureSink{})

	if len(b.List()) != 2 {
		t.Fatalf("List() length = %d, want 2", len(b.List()))
	}
}
