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
	"crypto/rand"
	"encoding/base32"
	"net/http"

	"bmcd/internal/rhttp"
	"bmcd/internal/session"
)

// registerAccountService installs AccountService, its Accounts
// collection, and the ConfigureSelf-gated GenerateSecretKey action that
// exercises spec.md §8 scenario 3: a ReadOnly user may act on their own
// account even though ConfigureUsers is normally required, because
// SelfParam("username") lets session.Authorize substitute ConfigureSelf.
func (h *Handlers) registerAccountService() {
	h.track(h.App.Route("/redfish/v1/AccountService").
		Get(session.RequireAny(session.PrivilegeLogin), h.getAccountService).
		Err())
	h.track(h.App.Route("/redfish/v1/AccountService/Accounts").
		Get(session.RequireAny(session.PrivilegeConfigureUsers), h.listAccounts).
		Err())
	h.track(h.App.Route("/redfish/v1/AccountService/Accounts/<str>", "username").
		Get(session.RequireAny(session.PrivilegeConfigureUsers), h.getAccount).
		Patch(session.RequireAny(session.PrivilegeConfigureUsers), h.patchAccount).
		SelfParam("username").
		Err())
	h.track(h.App.Route("/redfish/v1/AccountService/Accounts/<str>/Actions/ManagerAccount.GenerateSecretKey", "username").
		Post(session.RequireAny(session.PrivilegeConfigureUsers), h.generateSecretKey).
		SelfParam("username").
		Err())
}

func (h *Handlers) getAccountService(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.
		Set("@odata.type", "#AccountService.v1_12_0.AccountService").
		Set("@odata.id", "/redfish/v1/AccountService").
		Set("Id", "AccountService").
		Set("Name", "Account Service").
		Set("ServiceEnabled", true).
		Set("Accounts", odataRef("/redfish/v1/AccountService/Accounts"))
}

func accountRef(username string) *rhttp.JSONObject {
	return odataRef("/redfish/v1/AccountService/Accounts/" + username)
}

func (h *Handlers) listAccounts(req *rhttp.Request, resp *rhttp.Response) {
	members := make([]any, 0)
	for _, a := range h.Accounts.List() {
		members = append(members, accountRef(a.Username))
	}
	resp.Body.
		Set("@odata.type", "#ManagerAccountCollection.ManagerAccountCollection").
		Set("@odata.id", "/redfish/v1/AccountService/Accounts").
		Set("Name", "Accounts Collection").
		Set("Members@odata.count", len(members)).
		Set("Members", members)
}

func (h *Handlers) getAccount(req *rhttp.Request, resp *rhttp.Response) {
	username := req.Param("username")
	a, ok := h.Accounts.Get(username)
	if !ok {
		resp.Fail(resp.Errors.NotFound("ManagerAccount", username))
		return
	}
	resp.Body.
		Set("@odata.type", "#ManagerAccount.v1_11_0.ManagerAccount").
		Set("@odata.id", "/redfish/v1/AccountService/Accounts/"+a.Username).
		Set("Id", a.Username).
		Set("Name", "User Account").
		Set("UserName", a.Username).
		Set("RoleId", a.RoleName).
		Set("Enabled", a.Enabled).
		Set("Actions", rhttp.NewJSONObject().Set(
			"#ManagerAccount.GenerateSecretKey",
			rhttp.NewJSONObject().Set("target", "/redfish/v1/AccountService/Accounts/"+a.Username+"/Actions/ManagerAccount.GenerateSecretKey"),
		))
}

// patchAccount implements the self-service password change spec.md §8
// scenario 3 walks through.
func (h *Handlers) patchAccount(req *rhttp.Request, resp *rhttp.Response) {
	username := req.Param("username")
	if _, ok := h.Accounts.Get(username); !ok {
		resp.Fail(resp.Errors.NotFound("ManagerAccount", username))
		return
	}
	body, err := req.JSON()
	if err != nil {
		resp.Fail(resp.Errors.MalformedJSON())
		return
	}
	if password, ok := stringField(body, "Password"); ok {
		if err := h.Accounts.SetPassword(username, password); err != nil {
			resp.Fail(resp.Errors.InternalError())
			return
		}
	}
	resp.Status = http.StatusNoContent
	resp.Body = nil
}

// generateSecretKey returns a freshly generated random secret, the
// one-time-password-style action a ConfigureSelf-only caller may invoke
// against their own account.
func (h *Handlers) generateSecretKey(req *rhttp.Request, resp *rhttp.Response) {
	username := req.Param("username")
	if _, ok := h.Accounts.Get(username); !ok {
		resp.Fail(resp.Errors.NotFound("ManagerAccount", username))
		return
	}
	var buf [20]byte
	if _, err := rand.Read(buf[:]); err != nil {
		resp.Fail(resp.Errors.InternalError())
		return
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:])
	resp.Body.Set("SecretKey", secret)
}
