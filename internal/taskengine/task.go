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

// Package taskengine implements the async-operation state machine: Task
// lifecycle transitions, a TaskMonitor polling contract, and a
// retention-bounded Engine modeled on this service's original
// TaskData/TaskMonitor design.
package taskengine

import (
	"strconv"
	"sync"
	"time"

	"bmcd/internal/ojson"
	"bmcd/internal/registry"
)

// State is a task's position in its lifecycle.
type State int

const (
	StateNew State = iota
	StateStarting
	StateRunning
	StatePending
	StateSuspended
	StateInterrupted
	StateCompleted
	StateCancelled
	StateException
	StateKilled
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StatePending:
		return "Pending"
	case StateSuspended:
		return "Suspended"
	case StateInterrupted:
		return "Interrupted"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	case StateException:
		return "Exception"
	case StateKilled:
		return "Killed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether a task in this state will never transition
// again; only terminal tasks are eligible for retention eviction.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateException, StateKilled:
		return true
	default:
		return false
	}
}

// Task is a single tracked async operation.
type Task struct {
	mu sync.Mutex

	id         string
	index      uint64
	state      State
	status     string
	percent    int
	messages   []*ojson.Object
	matchTopic string
	createdAt  time.Time
	startedAt  time.Time
	endTime    time.Time
	delivered  bool
	removed    bool

	timer    *time.Timer
	timeout  time.Duration
	onExpire func(*Task)
	notify   func(key string, args ...string)
}

// ID returns the task's externally visible identifier.
func (t *Task) ID() string {
	return t.id
}

// Index returns the task's monotonically increasing creation order, used
// to break ties when sorting the TaskService collection.
func (t *Task) Index() uint64 {
	return t.index
}

// MatchTopic returns the opaque bus topic this task was created under,
// for a collaborator wiring bus-driven completion (see CompleteOnSignal).
func (t *Task) MatchTopic() string {
	return t.matchTopic
}

// IsTerminal reports whether the task has reached a terminal state.
func (t *Task) IsTerminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Terminal()
}

func (t *Task) emit(key string, extraArgs ...string) {
	if t.notify == nil {
		return
	}
	args := append([]string{t.id}, extraArgs...)
	t.notify(key, args...)
}

// Start transitions New/Starting tasks into Running.
func (t *Task) Start() {
	t.mu.Lock()
	t.state = StateRunning
	t.startedAt = time.Now()
	t.mu.Unlock()
	t.emit("TaskStarted")
}

// SetProgress updates the percent-complete indicator and emits
// TaskProgressChanged.
func (t *Task) SetProgress(percent int) {
	t.mu.Lock()
	t.percent = percent
	t.mu.Unlock()
	t.emit("TaskProgressChanged", strconv.Itoa(percent))
}

// Suspend pauses a running task pending an external event (e.g. a BMC
// reboot the task is waiting through).
func (t *Task) Suspend() {
	t.mu.Lock()
	t.state = StateSuspended
	t.mu.Unlock()
	t.emit("TaskPaused")
}

// Resume continues a suspended task.
func (t *Task) Resume() {
	t.mu.Lock()
	t.state = StateRunning
	t.mu.Unlock()
	t.emit("TaskResumed")
}

// Interrupt marks a task as externally interrupted without declaring it
// terminal; the caller decides whether to Resume or Cancel it next.
func (t *Task) Interrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateInterrupted
}

// Complete marks the task Completed. warning selects between
// TaskCompletedOK and TaskCompletedWarning for the emitted event and sets
// status to Warning or OK accordingly.
func (t *Task) Complete(warning bool) {
	t.mu.Lock()
	t.state = StateCompleted
	if warning {
		t.status = "Warning"
	} else {
		t.status = "OK"
	}
	t.endTime = time.Now()
	t.stopTimerLocked()
	t.mu.Unlock()
	if warning {
		t.emit("TaskCompletedWarning")
	} else {
		t.emit("TaskCompletedOK")
	}
}

// Cancel marks the task Cancelled by caller request.
func (t *Task) Cancel() {
	t.mu.Lock()
	t.state = StateCancelled
	t.status = "OK"
	t.endTime = time.Now()
	t.stopTimerLocked()
	t.mu.Unlock()
	t.emit("TaskCancelled")
}

// Kill force-terminates a task, e.g. on an operator-requested delete of a
// still-running task. Unlike a timeout or a caller Cancel, this lands in
// the distinct Killed terminal state with Critical status.
func (t *Task) Kill() {
	t.mu.Lock()
	t.state = StateKilled
	t.status = "Critical"
	t.endTime = time.Now()
	t.stopTimerLocked()
	t.mu.Unlock()
	t.emit("TaskAborted")
}

// AddMessage appends a rendered registry message to the task's Messages
// array without affecting lifecycle state, for operations that want to
// record progress detail (e.g. "validated firmware image").
func (t *Task) AddMessage(reg *registry.Registry, key string, args ...string) {
	entry := reg.BuildLogEntry(key, args...)
	if entry == nil {
		return
	}
	t.mu.Lock()
	t.messages = append(t.messages, entry)
	t.mu.Unlock()
}

// StartTimer arms (or re-arms) the expiry timer: if the task is still
// non-terminal when it fires, the task moves to Cancelled with status
// Warning, a TaskAborted message is emitted, and onExpire is invoked so
// the Engine can react (e.g. clean up a backend handle the task was
// holding).
func (t *Task) StartTimer(d time.Duration, onExpire func(*Task)) {
	t.mu.Lock()
	t.timeout = d
	t.onExpire = onExpire
	t.resetTimerLocked()
	t.mu.Unlock()
}

// ExtendTimer reschedules the expiry timer, used when a task's backend
// operation reports it is still making progress.
func (t *Task) ExtendTimer(d time.Duration) {
	t.mu.Lock()
	t.timeout = d
	t.resetTimerLocked()
	t.mu.Unlock()
}

func (t *Task) resetTimerLocked() {
	t.stopTimerLocked()
	if t.timeout <= 0 {
		return
	}
	t.timer = time.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		alreadyTerminal := t.state.Terminal()
		if !alreadyTerminal {
			t.state = StateCancelled
			t.status = "Warning"
			t.endTime = time.Now()
		}
		cb := t.onExpire
		t.mu.Unlock()
		if !alreadyTerminal {
			t.emit("TaskAborted")
		}
		if cb != nil {
			cb(t)
		}
	})
}

func (t *Task) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Snapshot is an immutable view of a task's current fields, safe to
// render into a response body without holding the task's lock.
type Snapshot struct {
	ID         string
	Index      uint64
	State      State
	Status     string
	Percent    int
	Messages   []*ojson.Object
	MatchTopic string
	CreatedAt  time.Time
	StartedAt  time.Time
	EndTime    time.Time
}

// Snapshot copies the task's current fields.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Task) snapshotLocked() Snapshot {
	msgs := make([]*ojson.Object, len(t.messages))
	copy(msgs, t.messages)
	status := t.status
	if status == "" {
		status = "OK"
	}
	return Snapshot{
		ID:         t.id,
		Index:      t.index,
		State:      t.state,
		Status:     status,
		Percent:    t.percent,
		Messages:   msgs,
		MatchTopic: t.matchTopic,
		CreatedAt:  t.createdAt,
		StartedAt:  t.startedAt,
		EndTime:    t.endTime,
	}
}

// PopulateMonitor implements the TaskMonitor polling contract: 202 with a
// minimal Task body on every poll while the task is still running, 204
// with no body exactly once the first time a terminal state is observed,
// and 404 forever after — both once the task is evicted (removed) and
// once that single 204 has already been delivered (gave204). There is no
// 200 step: a drained monitor never hands back a body again, matching
// this service's original populateResp/gave204 contract, where the
// terminal-state body is only ever available from the plain Task
// resource GET (PopulateResponse), never from the monitor.
func (t *Task) PopulateMonitor() (status int, body Snapshot, hasBody bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.removed || t.delivered {
		return 404, Snapshot{}, false
	}
	if !t.state.Terminal() {
		return 202, t.snapshotLocked(), true
	}
	t.delivered = true
	return 204, Snapshot{}, false
}

// PopulateResponse implements the plain Task resource GET: always 200
// with the current snapshot while the task is known, 404 once evicted.
func (t *Task) PopulateResponse() (status int, body Snapshot, hasBody bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.removed {
		return 404, Snapshot{}, false
	}
	return 200, t.snapshotLocked(), true
}
