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
	"container/list"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bmcd/internal/registry"
)

// Notifier is implemented by anything that wants to learn about task
// lifecycle events, typically internal/eventbus publishing a TaskEvent
// registry message to subscribers.
type Notifier interface {
	Notify(reg *registry.Registry, key string, args []string)
}

// Engine tracks every in-flight and recently completed Task, evicting the
// oldest terminal task once retention is exceeded (a still-running task
// is never evicted, so retention may transiently exceed MaxRetained while
// a backlog of long tasks is in flight).
type Engine struct {
	mu          sync.Mutex
	order       *list.List // *Task, oldest at Front
	byID        map[string]*list.Element
	maxRetained int
	nextIndex   uint64
	notifier    Notifier
}

// NewEngine returns an Engine retaining at most maxRetained tasks in
// total, evicting only terminal ones (0 disables the cap), and notifying
// notifier (nil is allowed, for
// callers not wiring an event bus) of lifecycle transitions.
func NewEngine(maxRetained int, notifier Notifier) *Engine {
	return &Engine{
		order:       list.New(),
		byID:        make(map[string]*list.Element),
		maxRetained: maxRetained,
		notifier:    notifier,
	}
}

// Create registers a new Task in state New for the given match topic
// (the generalized Crashdump/OnDemand event-matching string this
// service's tasks are scoped under) and returns it.
func (e *Engine) Create(matchTopic string) *Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextIndex++
	t := &Task{
		id:         uuid.New().String(),
		index:      e.nextIndex,
		state:      StateNew,
		matchTopic: matchTopic,
		createdAt:  time.Now(),
	}
	t.notify = func(key string, args ...string) {
		if e.notifier != nil {
			e.notifier.Notify(registry.Task, key, args)
		}
	}

	elem := e.order.PushBack(t)
	e.byID[t.id] = elem
	e.evictLocked()
	observeCreated(StateNew)
	setRetained(e.order.Len())
	return t
}

func (e *Engine) evictLocked() {
	if e.maxRetained <= 0 {
		return
	}
	for e.order.Len() > e.maxRetained {
		var victim *list.Element
		for el := e.order.Front(); el != nil; el = el.Next() {
			tk := el.Value.(*Task)
			tk.mu.Lock()
			terminal := tk.state.Terminal()
			tk.mu.Unlock()
			if terminal {
				victim = el
				break
			}
		}
		if victim == nil {
			return
		}
		tk := victim.Value.(*Task)
		tk.mu.Lock()
		tk.removed = true
		tk.mu.Unlock()
		delete(e.byID, tk.id)
		e.order.Remove(victim)
	}
}

// Get looks up a task by id. Eviction removes a task from the index
// entirely, so a caller holding a stale id simply gets ok=false rather
// than a task reporting removed=true.
func (e *Engine) Get(id string) (*Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	elem, ok := e.byID[id]
	if !ok {
		return nil, false
	}
	return elem.Value.(*Task), true
}

// List returns every retained task ordered by creation index.
func (e *Engine) List() []*Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Task, 0, e.order.Len())
	for el := e.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Task))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

// Remove force-removes a task by id: a still-running task is killed first
// (landing in the Killed terminal state rather than Cancelled, so a
// client can distinguish an operator-forced removal from its own
// cancellation), then the task is dropped from the index and TaskRemoved
// is emitted. Reports false if id is unknown.
func (e *Engine) Remove(id string) bool {
	e.mu.Lock()
	elem, ok := e.byID[id]
	if !ok {
		e.mu.Unlock()
		return false
	}
	delete(e.byID, id)
	e.order.Remove(elem)
	e.mu.Unlock()

	t := elem.Value.(*Task)
	if !t.IsTerminal() {
		t.Kill()
	}
	t.mu.Lock()
	t.removed = true
	t.mu.Unlock()
	t.emit("TaskRemoved")
	return true
}

// Count returns the number of retained tasks.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order.Len()
}
