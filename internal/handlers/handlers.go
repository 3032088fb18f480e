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

// Package handlers wires a representative slice of the Redfish resource
// tree onto the core (service root, SessionService, AccountService,
// TaskService, Registries) so the four core subsystems have something
// concrete to dispatch to, and so spec.md §8's end-to-end scenarios are
// exercisable. spec.md §1 scopes the full resource-handler surface out
// as "an external collaborator" — this package is the minimal
// collaborator needed to demonstrate the core, not a complete Redfish
// implementation (no Systems/Managers/Chassis inventory, which would
// require the opaque bus client this core only defines the interface
// for). Grounded on the teacher's internal/api/*.go handler split
// (one file per service) adapted from *http.Request/http.ResponseWriter
// to rhttp.Request/rhttp.Response.
package handlers

import (
	"bmcd/internal/account"
	"bmcd/internal/bmcapp"
	"bmcd/internal/eventbus"
	"bmcd/internal/session"
	"bmcd/internal/taskengine"
)

// Handlers holds the collaborators the registered routes close over.
type Handlers struct {
	App      *bmcapp.App
	Accounts *account.Store
	Tasks    *taskengine.Engine
	Events   *eventbus.Bus

	builderErrs []error
}

// New returns a Handlers ready to Register against app.
func New(app *bmcapp.App, accounts *account.Store) *Handlers {
	return &Handlers{
		App:      app,
		Accounts: accounts,
		Tasks:    app.Tasks,
		Events:   app.Events,
	}
}

// Register installs every route this package implements. Call once,
// before App.Validate.
func (h *Handlers) Register() error {
	h.registerServiceRoot()
	h.registerSessionService()
	h.registerAccountService()
	h.registerTaskService()
	h.registerRegistries()
	h.registerEventService()
	return h.errFromBuilders()
}

// track accumulates a RouteBuilder error across the register* methods so
// Register can report the first one instead of each method needing its
// own return value.
func (h *Handlers) track(err error) {
	if err != nil {
		h.builderErrs = append(h.builderErrs, err)
	}
}

func (h *Handlers) errFromBuilders() error {
	if len(h.builderErrs) == 0 {
		return nil
	}
	err := h.builderErrs[0]
	h.builderErrs = nil
	return err
}

// noAuth is the always-admitted privilege expression: an empty Expression
// is trivially satisfied (session.Expression.Satisfied), which is also
// how the router treats a route that never calls required any-privilege
// methods — used here for the handful of resources Redfish serves to
// anonymous callers (service root, discovery documents).
var noAuth = session.Expression{}
