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
	"bmcd/internal/rhttp"
)

func odataRef(id string) *rhttp.JSONObject {
	return rhttp.NewJSONObject().Set("@odata.id", id)
}

// registerServiceRoot installs GET /redfish/v1/, the one resource a
// caller may fetch with no session at all (spec.md §4.3: anonymous
// callers may still reach NoAuth-gated resources), grounded on the
// teacher's internal/api/service_root.go document shape.
func (h *Handlers) registerServiceRoot() {
	h.track(h.App.Route("/redfish/v1/").
		Get(noAuth, h.getServiceRoot).
		Err())
}

func (h *Handlers) getServiceRoot(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.
		Set("@odata.type", "#ServiceRoot.v1_16_0.ServiceRoot").
		Set("@odata.id", "/redfish/v1/").
		Set("Id", "RootService").
		Set("Name", "BMC Redfish Service").
		Set("RedfishVersion", "1.16.0").
		Set("UUID", "00000000-0000-0000-0000-000000000000").
		Set("SessionService", odataRef("/redfish/v1/SessionService")).
		Set("AccountService", odataRef("/redfish/v1/AccountService")).
		Set("TaskService", odataRef("/redfish/v1/TaskService")).
		Set("EventService", odataRef("/redfish/v1/EventService")).
		Set("Registries", odataRef("/redfish/v1/Registries")).
		Set("Links", rhttp.NewJSONObject().Set("Sessions", odataRef("/redfish/v1/SessionService/Sessions")))
}
