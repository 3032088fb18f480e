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
	"strconv"

	"bmcd/internal/registry"
	"bmcd/internal/rhttp"
)

// knownRegistryPrefixes lists the compiled-in registries this process
// exposes under /redfish/v1/Registries, in the order clients should see
// them enumerated.
var knownRegistryPrefixes = []string{"Base", "TaskEvent", "HeartbeatEvent", "ResourceEvent"}

// registerRegistries installs the Registries collection and per-registry
// lookup, spec.md §8 scenario 6 ("GET a compiled-in registry by prefix
// and resolve a MessageId against it").
func (h *Handlers) registerRegistries() {
	h.track(h.App.Route("/redfish/v1/Registries").
		Get(noAuth, h.listRegistries).
		Err())
	h.track(h.App.Route("/redfish/v1/Registries/<str>", "prefix").
		Get(noAuth, h.getRegistryFile).
		Err())
	h.track(h.App.Route("/redfish/v1/registries/<str>", "filename").
		Get(noAuth, h.getRegistryContent).
		Err())
}

func (h *Handlers) listRegistries(req *rhttp.Request, resp *rhttp.Response) {
	members := make([]any, 0, len(knownRegistryPrefixes))
	for _, p := range knownRegistryPrefixes {
		members = append(members, odataRef("/redfish/v1/Registries/"+p))
	}
	resp.Body.
		Set("@odata.type", "#MessageRegistryFileCollection.MessageRegistryFileCollection").
		Set("@odata.id", "/redfish/v1/Registries").
		Set("Name", "Registry File Collection").
		Set("Members@odata.count", len(members)).
		Set("Members", members)
}

func (h *Handlers) getRegistryFile(req *rhttp.Request, resp *rhttp.Response) {
	prefix := req.Param("prefix")
	reg, ok := registryByExternalPrefix(prefix)
	if !ok {
		resp.Fail(resp.Errors.NotFound("MessageRegistryFile", prefix))
		return
	}
	filename := reg.Header.Prefix + ".json"
	resp.Body.
		Set("@odata.type", "#MessageRegistryFile.v1_1_4.MessageRegistryFile").
		Set("@odata.id", "/redfish/v1/Registries/"+prefix).
		Set("Id", prefix).
		Set("Name", reg.Header.Name).
		Set("Languages", []any{reg.Header.Language}).
		Set("Registry", reg.Header.Prefix+"."+registryVersionString(reg)).
		Set("Location", []any{
			rhttp.NewJSONObject().
				Set("Language", reg.Header.Language).
				Set("Uri", "/redfish/v1/registries/"+filename),
		})
}

// getRegistryContent serves the compiled-in registry itself, the
// document a client resolves a MessageId against once it has the
// Location URI from getRegistryFile.
func (h *Handlers) getRegistryContent(req *rhttp.Request, resp *rhttp.Response) {
	filename := req.Param("filename")
	prefix := filename
	if len(filename) > 5 && filename[len(filename)-5:] == ".json" {
		prefix = filename[:len(filename)-5]
	}
	reg, ok := registry.GetRegistry(prefix)
	if !ok {
		resp.Fail(resp.Errors.NotFound("MessageRegistry", filename))
		return
	}
	msgs := rhttp.NewJSONObject()
	for _, m := range reg.Messages {
		msgs.Set(m.Key, rhttp.NewJSONObject().
			Set("Description", m.Description).
			Set("Message", m.Message).
			Set("Severity", m.Severity).
			Set("NumberOfArgs", m.NumberOfArgs).
			Set("ParamTypes", toAnySlice(m.ParamTypes)).
			Set("Resolution", m.Resolution))
	}
	resp.Body.
		Set("@odata.type", "#MessageRegistry.v1_5_0.MessageRegistry").
		Set("Id", reg.Header.Prefix).
		Set("Name", reg.Header.Name).
		Set("Language", reg.Header.Language).
		Set("Description", reg.Header.Description).
		Set("RegistryPrefix", reg.Header.Prefix).
		Set("RegistryVersion", registryVersionString(reg)).
		Set("OwningEntity", reg.Header.OwningEntity).
		Set("Messages", msgs)
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func registryVersionString(reg *registry.Registry) string {
	return strconv.Itoa(int(reg.Header.VersionMajor)) + "." +
		strconv.Itoa(int(reg.Header.VersionMinor)) + "." +
		strconv.Itoa(int(reg.Header.VersionPatch))
}

// registryByExternalPrefix maps the external AccountService-style
// registry names used in URLs (e.g. "TaskEvent") to their compiled-in
// internal/registry.Registry; each external name equals that registry's
// own Header.Prefix.
func registryByExternalPrefix(external string) (*registry.Registry, bool) {
	switch external {
	case "Base":
		return registry.Base, true
	case "TaskEvent":
		return registry.Task, true
	case "HeartbeatEvent":
		return registry.Heartbeat, true
	case "ResourceEvent":
		return registry.Resource, true
	default:
		return nil, false
	}
}
