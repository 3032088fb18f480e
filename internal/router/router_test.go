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

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bmcd/internal/rhttp"
	"bmcd/internal/session"
)

func echoHandler(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.Set("id", req.Param("id"))
}

func TestHandleArityMismatch(t *testing.T) {
	rt := New()
	err := rt.Handle("/redfish/v1/TaskService/Tasks/<str>", http.MethodGet, nil, nil, echoHandler)
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("expected ArityError, got %v", err)
	}
}

func TestHandleDuplicateMethod(t *testing.T) {
	rt := New()
	if err := rt.Handle("/redfish/v1/Tasks/<str>", http.MethodGet, nil, []string{"id"}, echoHandler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := rt.Handle("/redfish/v1/Tasks/<str>", http.MethodGet, nil, []string{"id"}, echoHandler)
	if _, ok := err.(*DuplicateMethodError); !ok {
		t.Fatalf("expected DuplicateMethodError, got %v", err)
	}
}

func TestDispatchMatchesTypedHole(t *testing.T) {
	rt := New()
	if err := rt.Handle("/redfish/v1/Tasks/<str>", http.MethodGet, nil, []string{"id"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/redfish/v1/Tasks/42", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestDispatchNotFound(t *testing.T) {
	rt := New()
	if err := rt.Handle("/redfish/v1/Tasks/<str>", http.MethodGet, nil, []string{"id"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/redfish/v1/Nope", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDispatchMethodNotAllowedSetsAllow(t *testing.T) {
	rt := New()
	if err := rt.Handle("/redfish/v1/Tasks/<str>", http.MethodGet, nil, []string{"id"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/redfish/v1/Tasks/42", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") == "" {
		t.Fatalf("expected Allow header on 405")
	}
}

func TestDispatchUnauthorizedWithoutSession(t *testing.T) {
	rt := New()
	required := session.RequireAny(session.PrivilegeConfigureComponents)
	if err := rt.Handle("/redfish/v1/Systems/<str>/Actions/Reset", http.MethodPost, required, []string{"id"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/redfish/v1/Systems/1/Actions/Reset", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDispatchForbiddenWithInsufficientPrivilege(t *testing.T) {
	rt := New()
	required := session.RequireAny(session.PrivilegeConfigureComponents)
	if err := rt.Handle("/redfish/v1/Systems/<str>/Actions/Reset", http.MethodPost, required, []string{"id"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	sess := &session.Session{Username: "alice", Privileges: session.NewPrivilegeSet(session.PrivilegeLogin)}
	req := httptest.NewRequest(http.MethodPost, "/redfish/v1/Systems/1/Actions/Reset", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, sess)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDispatchConfigureSelfException(t *testing.T) {
	rt := New()
	required := session.RequireAny(session.PrivilegeConfigureUsers)
	if err := rt.Handle("/redfish/v1/AccountService/Accounts/<str>", http.MethodPatch, required, []string{"username"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	rt.SetSelfParam("/redfish/v1/AccountService/Accounts/<str>", "username")

	sess := &session.Session{Username: "alice", Privileges: session.NewPrivilegeSet(session.PrivilegeLogin, session.PrivilegeConfigureSelf)}
	req := httptest.NewRequest(http.MethodPatch, "/redfish/v1/AccountService/Accounts/alice", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for self-targeted account update, got %d body=%s", rec.Code, rec.Body.String())
	}

	req2 := httptest.NewRequest(http.MethodPatch, "/redfish/v1/AccountService/Accounts/bob", nil)
	rec2 := httptest.NewRecorder()
	rt.ServeHTTP(rec2, req2, sess)
	if rec2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for other-account update, got %d", rec2.Code)
	}
}

func TestDispatchOptionsAdvertisesAllow(t *testing.T) {
	rt := New()
	if err := rt.Handle("/redfish/v1/Tasks/<str>", http.MethodGet, nil, []string{"id"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	req := httptest.NewRequest(http.MethodOptions, "/redfish/v1/Tasks/1", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestPathHoleConsumesRemainder(t *testing.T) {
	rt := New()
	if err := rt.Handle("/redfish/v1/SchemaStore/<path>", http.MethodGet, nil, []string{"rest"}, echoHandler); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/redfish/v1/SchemaStore/en/Task.json", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestValidateRejectsEmptyRoute(t *testing.T) {
	rt := New()
	rt.root.literalChildren["orphan"] = newNode()
	rt.routes = append(rt.routes, &Route{Pattern: "/orphan", handlers: map[string]Handler{}})
	rt.root.literalChildren["orphan"].route = rt.routes[0]

	if err := rt.Validate(); err == nil {
		t.Fatalf("expected Validate to reject a route with no handlers")
	}
}
