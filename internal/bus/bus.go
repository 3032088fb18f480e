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

// Package bus defines the opaque object-mapping bus client contract that
// internal/taskengine and resource handlers depend on. spec.md §1
// explicitly scopes the broker's own wire schema out of this core: the
// core only needs to subscribe to named signal topics and publish
// outbound calls against them. No concrete binding (D-Bus, a message
// queue, anything else the BMC's internal bus happens to be) is
// implemented here; a production build supplies one that satisfies
// Client.
package bus

import "context"

// Signal is a single inbound notification from the bus: a topic (the
// same opaque match-topic string a Task is created with) and a decoded
// payload. The payload shape is a collaborator concern; the core only
// ever inspects it through the small bus.PropertyChanged helper schema
// handlers opt into.
type Signal struct {
	Topic     string
	Interface string
	Path      string
	Payload   map[string]any
}

// Cancel unregisters a previously-established subscription. Calling it
// more than once is a no-op.
type Cancel func()

// Client is the bus's facade as seen by the core: register interest in a
// topic, receive decoded Signals on a channel-free callback (dispatched
// on whatever goroutine the collaborator's transport uses — the core's
// own state is protected by per-package locks precisely so this callback
// may arrive concurrently with request handling, see SPEC_FULL.md §5),
// and issue outbound calls.
type Client interface {
	// Subscribe registers a callback invoked for every Signal observed
	// on topic. The returned Cancel drops the subscription.
	Subscribe(topic string, fn func(Signal)) Cancel

	// Call issues a synchronous bus call and decodes the reply into
	// reply (a pointer the collaborator's binding knows how to fill).
	Call(ctx context.Context, destination, path, method string, args []any, reply any) error

	// Close releases any transport-level resources the client holds.
	Close() error
}

// PropertyChanged is the minimal decoded shape the Crashdump/OnDemand
// task-completion rule inspects (spec.md §9 Open Question): any
// properties-changed signal on the configured interface completes the
// task, with no payload inspection beyond the interface name, preserving
// the original's permissive behavior.
func PropertyChanged(sig Signal, iface string) bool {
	return sig.Interface == iface
}
