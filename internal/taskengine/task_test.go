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
	"testing"
	"time"

	"bmcd/internal/registry"
)

func TestTaskLifecycleEmitsExpectedEvents(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")

	task.Start()
	task.SetProgress(50)
	task.Suspend()
	task.Resume()
	task.Complete(false)

	snap := task.Snapshot()
	if snap.State != StateCompleted {
		t.Fatalf("state = %v, want Completed", snap.State)
	}
	if snap.Status != "OK" {
		t.Fatalf("status = %q, want OK", snap.Status)
	}
	if snap.Percent != 50 {
		t.Fatalf("percent = %d, want 50", snap.Percent)
	}
	if !task.IsTerminal() {
		t.Fatalf("expected terminal task after Complete")
	}
}

func TestTaskCompleteWithWarningSetsWarningStatus(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()
	task.Complete(true)

	snap := task.Snapshot()
	if snap.State != StateCompleted {
		t.Fatalf("state = %v, want Completed", snap.State)
	}
	if snap.Status != "Warning" {
		t.Fatalf("status = %q, want Warning", snap.Status)
	}
}

func TestTaskTimeoutLandsInCancelledWithWarningStatus(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()

	done := make(chan struct{})
	task.StartTimer(10*time.Millisecond, func(*Task) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}

	snap := task.Snapshot()
	if snap.State != StateCancelled {
		t.Fatalf("state = %v, want Cancelled on timeout", snap.State)
	}
	if snap.Status != "Warning" {
		t.Fatalf("status = %q, want Warning on timeout", snap.Status)
	}
}

func TestTaskTimeoutDoesNotOverrideExistingTerminalState(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()
	task.StartTimer(5*time.Millisecond, func(*Task) {})
	task.Complete(false)

	time.Sleep(20 * time.Millisecond)

	snap := task.Snapshot()
	if snap.State != StateCompleted {
		t.Fatalf("state = %v, want completion to stick despite timer race", snap.State)
	}
}

func TestTaskKillReachesDistinctKilledState(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()
	task.Kill()

	snap := task.Snapshot()
	if snap.State != StateKilled {
		t.Fatalf("state = %v, want Killed", snap.State)
	}
	if snap.Status != "Critical" {
		t.Fatalf("status = %q, want Critical", snap.Status)
	}
	if !task.IsTerminal() {
		t.Fatalf("Killed must be terminal")
	}
}

func TestPopulateMonitorContract(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()

	status, _, hasBody := task.PopulateMonitor()
	if status != 202 || !hasBody {
		t.Fatalf("running task: status=%d hasBody=%v, want 202/true", status, hasBody)
	}

	status, _, hasBody = task.PopulateMonitor()
	if status != 202 || !hasBody {
		t.Fatalf("second running poll: status=%d hasBody=%v, want 202/true", status, hasBody)
	}

	task.Complete(false)

	status, _, hasBody = task.PopulateMonitor()
	if status != 204 || hasBody {
		t.Fatalf("first terminal poll: status=%d hasBody=%v, want 204/false", status, hasBody)
	}

	status, _, hasBody = task.PopulateMonitor()
	if status != 404 || hasBody {
		t.Fatalf("second terminal poll: status=%d hasBody=%v, want 404/false", status, hasBody)
	}
}

func TestAddMessageDoesNotChangeState(t *testing.T) {
	e := NewEngine(0, nil)
	task := e.Create("")
	task.Start()
	task.AddMessage(registry.Task, "TaskProgressChanged", "1", "50")

	if task.IsTerminal() {
		t.Fatalf("AddMessage must not change lifecycle state")
	}
}
