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

package handlers

import (
	"net/http"
	"time"

	"bmcd/internal/rde"
	"bmcd/internal/registry"
	"bmcd/internal/rhttp"
	"bmcd/internal/session"
	"bmcd/internal/taskengine"
)

// registerTaskService installs TaskService, its Tasks collection, the
// TaskMonitor polling endpoint (spec.md §6: 202 repeatable, 204 once,
// then 404), and UpdateService.SimpleUpdate, the action spec.md §8
// scenario 5 spawns a task from.
func (h *Handlers) registerTaskService() {
	h.track(h.App.Route("/redfish/v1/TaskService").
		Get(session.RequireAny(session.PrivilegeLogin), h.getTaskService).
		Err())
	h.track(h.App.Route("/redfish/v1/TaskService/Tasks").
		Get(session.RequireAny(session.PrivilegeLogin), h.listTasks).
		Err())
	h.track(h.App.Route("/redfish/v1/TaskService/Tasks/<str>", "id").
		Get(session.RequireAny(session.PrivilegeLogin), h.getTask).
		Delete(session.RequireAny(session.PrivilegeConfigureManager), h.deleteTask).
		Err())
	h.track(h.App.Route("/redfish/v1/TaskService/TaskMonitors/<str>", "id").
		Get(session.RequireAny(session.PrivilegeLogin), h.getTaskMonitor).
		Err())
	h.track(h.App.Route("/redfish/v1/UpdateService").
		Get(session.RequireAny(session.PrivilegeLogin), h.getUpdateService).
		Err())
	h.track(h.App.Route("/redfish/v1/UpdateService/Actions/UpdateService.SimpleUpdate").
		Post(session.RequireAny(session.PrivilegeConfigureComponents), h.simpleUpdate).
		Err())
}

func (h *Handlers) getTaskService(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.
		Set("@odata.type", "#TaskService.v1_3_0.TaskService").
		Set("@odata.id", "/redfish/v1/TaskService").
		Set("Id", "TaskService").
		Set("Name", "Task Service").
		Set("ServiceEnabled", true).
		Set("CompletedTaskOverWritePolicy", "Oldest").
		Set("Tasks", odataRef("/redfish/v1/TaskService/Tasks"))
}

func taskRef(id string) *rhttp.JSONObject {
	return odataRef("/redfish/v1/TaskService/Tasks/" + id)
}

func (h *Handlers) listTasks(req *rhttp.Request, resp *rhttp.Response) {
	members := make([]any, 0)
	for _, t := range h.Tasks.List() {
		members = append(members, taskRef(t.ID()))
	}
	resp.Body.
		Set("@odata.type", "#TaskCollection.TaskCollection").
		Set("@odata.id", "/redfish/v1/TaskService/Tasks").
		Set("Name", "Task Collection").
		Set("Members@odata.count", len(members)).
		Set("Members", members)
}

func renderTask(id string, snap taskengine.Snapshot) *rhttp.JSONObject {
	obj := rhttp.NewJSONObject().
		Set("@odata.type", "#Task.v1_7_1.Task").
		Set("@odata.id", "/redfish/v1/TaskService/Tasks/"+id).
		Set("Id", id).
		Set("Name", "Task "+id).
		Set("TaskState", snap.State.String()).
		Set("TaskStatus", snap.Status).
		Set("PercentComplete", snap.Percent).
		Set("StartTime", snap.CreatedAt.UTC().Format(time.RFC3339))
	if !snap.EndTime.IsZero() {
		obj.Set("EndTime", snap.EndTime.UTC().Format(time.RFC3339))
	}
	msgs := make([]any, len(snap.Messages))
	for i, m := range snap.Messages {
		msgs[i] = m
	}
	obj.Set("Messages", msgs)
	return obj
}

// renderTaskMinimal builds the minimal Task representation spec.md §6
// specifies for the 202 response on task creation and on every
// subsequent non-terminal TaskMonitor poll: @odata.id, @odata.type, Id,
// TaskState, TaskStatus — none of the full resource's Messages/timing
// detail, mirroring the original's populateResp minimal JSON.
func renderTaskMinimal(id string, snap taskengine.Snapshot) *rhttp.JSONObject {
	return rhttp.NewJSONObject().
		Set("@odata.id", "/redfish/v1/TaskService/Tasks/"+id).
		Set("@odata.type", "#Task.v1_4_3.Task").
		Set("Id", id).
		Set("TaskState", snap.State.String()).
		Set("TaskStatus", snap.Status)
}

func (h *Handlers) getTask(req *rhttp.Request, resp *rhttp.Response) {
	id := req.Param("id")
	t, ok := h.Tasks.Get(id)
	if !ok {
		resp.Fail(resp.Errors.NotFound("Task", id))
		return
	}
	status, snap, hasBody := t.PopulateResponse()
	if !hasBody {
		resp.Fail(resp.Errors.NotFound("Task", id))
		return
	}
	resp.Status = status
	resp.Body = renderTask(id, snap)
}

// getTaskMonitor implements the TaskMonitor polling contract: 202 with
// the minimal Task body, Location, and Retry-After on every poll while
// running, 204 with no body exactly once on the first terminal poll, and
// 404 forever after that — both once evicted and once already drained
// (spec.md §6; internal/taskengine.Task.PopulateMonitor).
func (h *Handlers) getTaskMonitor(req *rhttp.Request, resp *rhttp.Response) {
	id := req.Param("id")
	t, ok := h.Tasks.Get(id)
	if !ok {
		resp.Fail(resp.Errors.NotFound("Task", id))
		return
	}
	status, snap, hasBody := t.PopulateMonitor()
	resp.Status = status
	if !hasBody {
		resp.Body = nil
		if status == 404 {
			resp.Fail(resp.Errors.NotFound("Task", id))
		}
		return
	}
	resp.Header.Set("Location", "/redfish/v1/TaskService/TaskMonitors/"+id)
	resp.Header.Set("Retry-After", "10")
	resp.Body = renderTaskMinimal(id, snap)
}

// deleteTask force-removes a task, killing it first if it is still
// running, and emits TaskRemoved (spec.md §4.7 event emission table).
func (h *Handlers) deleteTask(req *rhttp.Request, resp *rhttp.Response) {
	id := req.Param("id")
	if !h.Tasks.Remove(id) {
		resp.Fail(resp.Errors.NotFound("Task", id))
		return
	}
	resp.Status = http.StatusNoContent
	resp.Body = nil
}

func (h *Handlers) getUpdateService(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.
		Set("@odata.type", "#UpdateService.v1_11_0.UpdateService").
		Set("@odata.id", "/redfish/v1/UpdateService").
		Set("Id", "UpdateService").
		Set("Name", "Update Service").
		Set("ServiceEnabled", true).
		Set("Actions", rhttp.NewJSONObject().Set(
			"#UpdateService.SimpleUpdate",
			rhttp.NewJSONObject().Set("target", "/redfish/v1/UpdateService/Actions/UpdateService.SimpleUpdate"),
		))
}

// simpleUpdate spawns a Task for a firmware update, returning 202 with a
// Location header pointing at the TaskMonitor immediately and letting
// the update run in the background — the async-response scenario
// spec.md §8 walks through end to end.
func (h *Handlers) simpleUpdate(req *rhttp.Request, resp *rhttp.Response) {
	body, err := req.JSON()
	if err != nil {
		resp.Fail(resp.Errors.MalformedJSON())
		return
	}
	imageURI, ok := stringField(body, "ImageURI")
	if !ok || imageURI == "" {
		resp.Fail(resp.Errors.PropertyMissing("ImageURI"))
		return
	}

	t := h.Tasks.Create("SimpleUpdate")

	// Some OEM clients reference a device-resident firmware slot by BEJ
	// binding (e.g. "%L1/Slot/%I1") instead of a literal URI, deferring
	// to this service's own FirmwareInventory collection and the new
	// task's id. A plain ImageURI has no %L/%I tokens and resolves
	// unchanged.
	resolvedURI, err := rde.Resolve(imageURI, rde.ResourceMap{
		Resources:   map[int]string{1: "/redfish/v1/UpdateService/FirmwareInventory"},
		Identifiers: map[int]string{1: t.ID()},
	})
	if err != nil {
		resp.Fail(resp.Errors.PropertyValueFormatError(imageURI, "ImageURI"))
		return
	}
	imageURI = resolvedURI
	t.StartTimer(10*time.Minute, func(*taskengine.Task) {})
	t.Start()

	go func(t *taskengine.Task) {
		t.SetProgress(50)
		time.Sleep(100 * time.Millisecond)
		t.AddMessage(registry.Task, "TaskCompletedOK")
		t.SetProgress(100)
		t.Complete(false)
	}(t)

	location := "/redfish/v1/TaskService/TaskMonitors/" + t.ID()
	resp.Status = http.StatusAccepted
	resp.Header.Set("Location", location)
	resp.Header.Set("Retry-After", "10")
	resp.Body = renderTaskMinimal(t.ID(), t.Snapshot())
}
