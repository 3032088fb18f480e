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

	"bmcd/internal/rhttp"
	"bmcd/internal/session"
)

func stringField(obj *rhttp.JSONObject, key string) (string, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// registerSessionService installs SessionService and its Sessions
// collection: the login/logout scenario spec.md §8 walks end to end.
// Login is the one write the unauthenticated caller may perform, so its
// route carries noAuth while every other session operation requires an
// existing one.
func (h *Handlers) registerSessionService() {
	h.track(h.App.Route("/redfish/v1/SessionService").
		Get(noAuth, h.getSessionService).
		Err())
	h.track(h.App.Route("/redfish/v1/SessionService/Sessions").
		Get(session.RequireAny(session.PrivilegeConfigureManager), h.listSessions).
		Post(noAuth, h.login).
		Err())
	h.track(h.App.Route("/redfish/v1/SessionService/Sessions/<str>", "id").
		Get(session.RequireAny(session.PrivilegeLogin), h.getSession).
		Delete(session.RequireAny(session.PrivilegeLogin), h.logout).
		Err())
}

func (h *Handlers) getSessionService(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.
		Set("@odata.type", "#SessionService.v1_1_8.SessionService").
		Set("@odata.id", "/redfish/v1/SessionService").
		Set("Id", "SessionService").
		Set("Name", "Session Service").
		Set("ServiceEnabled", true).
		Set("SessionTimeout", 1800).
		Set("Sessions", odataRef("/redfish/v1/SessionService/Sessions"))
}

// login implements POST .../Sessions: the one write an anonymous caller
// may perform. On success it mirrors the Redfish session-creation
// contract exactly — X-Auth-Token and Location headers, 201, and the new
// Session resource as the body.
func (h *Handlers) login(req *rhttp.Request, resp *rhttp.Response) {
	body, err := req.JSON()
	if err != nil {
		resp.Fail(resp.Errors.MalformedJSON())
		return
	}
	username, ok := stringField(body, "UserName")
	if !ok || username == "" {
		resp.Fail(resp.Errors.PropertyMissing("UserName"))
		return
	}
	password, ok := stringField(body, "Password")
	if !ok || password == "" {
		resp.Fail(resp.Errors.PropertyMissing("Password"))
		return
	}

	roleName, ok := h.Accounts.Authenticate(username, password)
	if !ok {
		resp.Fail(resp.Errors.Unauthorized())
		return
	}
	sess, err := h.App.Sessions.Create(username, roleName, req.Header.Get("Origin"))
	if err != nil {
		resp.Fail(resp.Errors.InternalError())
		return
	}

	location := "/redfish/v1/SessionService/Sessions/" + sess.ID
	resp.Status = http.StatusCreated
	resp.Header.Set("X-Auth-Token", sess.ID)
	resp.Header.Set("Location", location)
	resp.Body.
		Set("@odata.type", "#Session.v1_6_0.Session").
		Set("@odata.id", location).
		Set("Id", sess.ID).
		Set("Name", "User Session").
		Set("UserName", sess.Username).
		Set("ClientOriginIPAddress", sess.ClientOrigin)
}

func (h *Handlers) listSessions(req *rhttp.Request, resp *rhttp.Response) {
	members := make([]any, 0)
	for _, id := range h.App.Sessions.IDs() {
		members = append(members, odataRef("/redfish/v1/SessionService/Sessions/"+id))
	}
	resp.Body.
		Set("@odata.type", "#SessionCollection.SessionCollection").
		Set("@odata.id", "/redfish/v1/SessionService/Sessions").
		Set("Name", "Session Collection").
		Set("Members@odata.count", len(members)).
		Set("Members", members)
}

func (h *Handlers) getSession(req *rhttp.Request, resp *rhttp.Response) {
	id := req.Param("id")
	sess, ok := h.App.Sessions.Get(id)
	if !ok {
		resp.Fail(resp.Errors.NotFound("Session", id))
		return
	}
	resp.Body.
		Set("@odata.type", "#Session.v1_6_0.Session").
		Set("@odata.id", "/redfish/v1/SessionService/Sessions/"+sess.ID).
		Set("Id", sess.ID).
		Set("Name", "User Session").
		Set("UserName", sess.Username).
		Set("ClientOriginIPAddress", sess.ClientOrigin)
}

// logout implements DELETE .../Sessions/<id>. A caller may always delete
// their own session regardless of privilege (closing your own login
// session is not an account-configuration operation); deleting someone
// else's session still requires ConfigureManager.
func (h *Handlers) logout(req *rhttp.Request, resp *rhttp.Response) {
	id := req.Param("id")
	if _, ok := h.App.Sessions.Get(id); !ok {
		resp.Fail(resp.Errors.NotFound("Session", id))
		return
	}
	if req.Session.ID != id && !req.Session.Privileges.Has(session.PrivilegeConfigureManager) {
		resp.Fail(resp.Errors.InsufficientPrivilege())
		return
	}
	h.App.Sessions.Delete(id)
	resp.Status = http.StatusNoContent
	resp.Body = nil
}
