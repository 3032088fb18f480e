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

package taskengine

import (
	"context"
	"testing"

	"bmcd/internal/bus"
)

// fakeClient is an in-process bus.Client: Subscribe records the callback
// for the most recent topic, and fire delivers a signal directly to it,
// with no real transport involved.
type fakeClient struct {
	topic string
	fn    func(bus.Signal)
}

func (c *fakeClient) Subscribe(topic string, fn func(bus.Signal)) bus.Cancel {
	c.topic = topic
	c.fn = fn
	return func() { c.fn = nil }
}

func (c *fakeClient) Call(ctx context.Context, destination, path, method string, args []any, reply any) error {
	return nil
}

func (c *fakeClient) Close() error { return nil }

func (c *fakeClient) fire(sig bus.Signal) {
	if c.fn != nil {
		c.fn(sig)
	}
}

func TestCompleteOnSignalCompletesOnMatchingInterface(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("xyz.openbmc_project.Crashdump.OnDemand")
	task.Start()

	client := &fakeClient{}
	cancel := CompleteOnSignal(task, client, "xyz.openbmc_project.Crashdump.OnDemand")
	defer cancel()

	if client.topic != task.MatchTopic() {
		t.Fatalf("Subscribe topic = %q, want %q", client.topic, task.MatchTopic())
	}

	client.fire(bus.Signal{Topic: task.MatchTopic(), Interface: "some.other.Interface"})
	if task.IsTerminal() {
		t.Fatalf("task completed on non-matching interface")
	}

	client.fire(bus.Signal{Topic: task.MatchTopic(), Interface: "xyz.openbmc_project.Crashdump.OnDemand"})
	if !task.IsTerminal() {
		t.Fatalf("expected task to be completed after matching signal")
	}

	snap := task.Snapshot()
	if snap.State != StateCompleted {
		t.Fatalf("state = %v, want %v", snap.State, StateCompleted)
	}
}

func TestCompleteOnSignalIgnoresAlreadyTerminalTask(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("xyz.openbmc_project.Crashdump.OnDemand")
	task.Start()
	task.Cancel()

	client := &fakeClient{}
	cancel := CompleteOnSignal(task, client, "xyz.openbmc_project.Crashdump.OnDemand")
	defer cancel()

	client.fire(bus.Signal{Topic: task.MatchTopic(), Interface: "xyz.openbmc_project.Crashdump.OnDemand"})

	snap := task.Snapshot()
	if snap.State != StateCancelled {
		t.Fatalf("state = %v, want cancellation to stick (%v)", snap.State, StateCancelled)
	}
}
