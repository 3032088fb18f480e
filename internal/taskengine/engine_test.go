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

import "testing"

func TestEngineEvictsOldestTerminalTaskOverCapacity(t *testing.T) {
	e := NewEngine(2, nil)

	t1 := e.Create("")
	t1.Start()
	t1.Complete(false)

	t2 := e.Create("")
	t2.Start() // still running, not eligible for eviction

	t3 := e.Create("")
	t3.Start()
	t3.Complete(false)

	if e.Count() != 2 {
		t.Fatalf("count = %d, want 2 after evicting the oldest terminal task", e.Count())
	}
	if _, ok := e.Get(t1.ID()); ok {
		t.Fatalf("expected oldest terminal task to be evicted")
	}
	if _, ok := e.Get(t2.ID()); !ok {
		t.Fatalf("running task must never be evicted")
	}
	if _, ok := e.Get(t3.ID()); !ok {
		t.Fatalf("most recent task should be retained")
	}
}

func TestEngineNeverEvictsRunningTasksPastCapacity(t *testing.T) {
	e := NewEngine(1, nil)
	t1 := e.Create("")
	t1.Start()
	t2 := e.Create("")
	t2.Start()

	if e.Count() != 2 {
		t.Fatalf("count = %d, want 2 — no terminal task exists to evict", e.Count())
	}
}

func TestEngineListOrderedByCreationIndex(t *testing.T) {
	e := NewEngine(0, nil)
	a := e.Create("")
	b := e.Create("")
	c := e.Create("")

	list := e.List()
	if len(list) != 3 || list[0].ID() != a.ID() || list[1].ID() != b.ID() || list[2].ID() != c.ID() {
		t.Fatalf("List() not ordered by creation index: %v", list)
	}
}

func TestEngineRemoveKillsRunningTaskAndDropsIt(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()

	if !e.Remove(task.ID()) {
		t.Fatalf("Remove() = false, want true for a known task")
	}
	if _, ok := e.Get(task.ID()); ok {
		t.Fatalf("removed task must no longer be retrievable from the engine")
	}

	status, _, hasBody := task.PopulateResponse()
	if status != 404 || hasBody {
		t.Fatalf("removed task snapshot: status=%d hasBody=%v, want 404/false", status, hasBody)
	}
}

func TestEngineRemoveOnAlreadyTerminalTaskKeepsItsState(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()
	task.Cancel()

	e.Remove(task.ID())

	snap := task.Snapshot()
	if snap.State != StateCancelled {
		t.Fatalf("state = %v, want Cancelled to stick (Remove must not re-Kill a terminal task)", snap.State)
	}
}

func TestEngineRemoveUnknownIDReturnsFalse(t *testing.T) {
	e := NewEngine(0, nil)
	if e.Remove("does-not-exist") {
		t.Fatalf("Remove() = true for unknown id, want false")
	}
}
