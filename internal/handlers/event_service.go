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

	"github.com/google/uuid"

	"bmcd/internal/eventbus"
	"bmcd/internal/rhttp"
	"bmcd/internal/session"
)

// registerEventService installs EventService, its Subscriptions
// collection (HTTP POST delivery), and an SSE upgrade endpoint — the two
// concrete Sink implementations spec.md §4.8 leaves abstract.
func (h *Handlers) registerEventService() {
	h.track(h.App.Route("/redfish/v1/EventService").
		Get(session.RequireAny(session.PrivilegeLogin), h.getEventService).
		Err())
	h.track(h.App.Route("/redfish/v1/EventService/Subscriptions").
		Get(session.RequireAny(session.PrivilegeConfigureManager), h.listSubscriptions).
		Post(session.RequireAny(session.PrivilegeConfigureManager), h.createSubscription).
		Err())
	h.track(h.App.Route("/redfish/v1/EventService/Subscriptions/<str>", "id").
		Get(session.RequireAny(session.PrivilegeConfigureManager), h.getSubscription).
		Delete(session.RequireAny(session.PrivilegeConfigureManager), h.deleteSubscription).
		Err())

	sseBuilder := h.App.Route("/redfish/v1/EventService/SSE").
		Get(session.RequireAny(session.PrivilegeLogin), h.sseDocument)
	sseBuilder.Upgrade(h.upgradeSSE)
	h.track(sseBuilder.Err())
}

func (h *Handlers) getEventService(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.
		Set("@odata.type", "#EventService.v1_9_0.EventService").
		Set("@odata.id", "/redfish/v1/EventService").
		Set("Id", "EventService").
		Set("Name", "Event Service").
		Set("ServiceEnabled", true).
		Set("ServerSentEventUri", "/redfish/v1/EventService/SSE").
		Set("Subscriptions", odataRef("/redfish/v1/EventService/Subscriptions"))
}

// sseDocument answers a plain (non-upgrade) GET against the SSE endpoint
// with a pointer back to itself; an actual event stream requires the
// Connection: Upgrade handshake upgradeSSE handles instead.
func (h *Handlers) sseDocument(req *rhttp.Request, resp *rhttp.Response) {
	resp.Body.
		Set("@odata.id", "/redfish/v1/EventService/SSE").
		Set("Name", "Server-Sent Events Stream").
		Set("Description", "Upgrade this connection (Connection: Upgrade) to receive events")
}

func subscriptionRef(id string) *rhttp.JSONObject {
	return odataRef("/redfish/v1/EventService/Subscriptions/" + id)
}

func (h *Handlers) listSubscriptions(req *rhttp.Request, resp *rhttp.Response) {
	members := make([]any, 0)
	for _, s := range h.Events.List() {
		members = append(members, subscriptionRef(s.ID))
	}
	resp.Body.
		Set("@odata.type", "#EventDestinationCollection.EventDestinationCollection").
		Set("@odata.id", "/redfish/v1/EventService/Subscriptions").
		Set("Name", "Event Subscription Collection").
		Set("Members@odata.count", len(members)).
		Set("Members", members)
}

func stringArrayField(obj *rhttp.JSONObject, key string) []string {
	v, ok := obj.Get(key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (h *Handlers) createSubscription(req *rhttp.Request, resp *rhttp.Response) {
	body, err := req.JSON()
	if err != nil {
		resp.Fail(resp.Errors.MalformedJSON())
		return
	}
	destination, ok := stringField(body, "Destination")
	if !ok || destination == "" {
		resp.Fail(resp.Errors.PropertyMissing("Destination"))
		return
	}
	protocol, _ := stringField(body, "Protocol")
	if protocol == "" {
		protocol = "Redfish"
	}
	context, _ := stringField(body, "Context")

	sub := &eventbus.Subscription{
		ID:               uuid.New().String(),
		Destination:      destination,
		Protocol:         protocol,
		Context:          context,
		RegistryPrefixes: stringArrayField(body, "RegistryPrefixes"),
		MessageKeys:      stringArrayField(body, "MessageIds"),
	}
	h.Events.Subscribe(sub, eventbus.NewHTTPSink(destination, nil))

	location := "/redfish/v1/EventService/Subscriptions/" + sub.ID
	resp.Status = http.StatusCreated
	resp.Header.Set("Location", location)
	resp.Body.
		Set("@odata.type", "#EventDestination.v1_14_1.EventDestination").
		Set("@odata.id", location).
		Set("Id", sub.ID).
		Set("Name", "Event Subscription").
		Set("Destination", sub.Destination).
		Set("Protocol", sub.Protocol).
		Set("Context", sub.Context)
}

func (h *Handlers) getSubscription(req *rhttp.Request, resp *rhttp.Response) {
	id := req.Param("id")
	sub, ok := h.Events.Get(id)
	if !ok {
		resp.Fail(resp.Errors.NotFound("EventDestination", id))
		return
	}
	resp.Body.
		Set("@odata.type", "#EventDestination.v1_14_1.EventDestination").
		Set("@odata.id", "/redfish/v1/EventService/Subscriptions/"+sub.ID).
		Set("Id", sub.ID).
		Set("Name", "Event Subscription").
		Set("Destination", sub.Destination).
		Set("Protocol", sub.Protocol).
		Set("Context", sub.Context)
}

func (h *Handlers) deleteSubscription(req *rhttp.Request, resp *rhttp.Response) {
	id := req.Param("id")
	if _, ok := h.Events.Get(id); !ok {
		resp.Fail(resp.Errors.NotFound("EventDestination", id))
		return
	}
	h.Events.Unsubscribe(id)
	resp.Status = http.StatusNoContent
	resp.Body = nil
}

// upgradeSSE handles a Connection: Upgrade request against
// /redfish/v1/EventService/SSE by authenticating the X-Auth-Token header
// itself (router upgrade hooks bypass the normal privilege check, since
// they replace the whole Response lifecycle) and registering a
// subscription backed by an SSESink for the connection's lifetime.
func (h *Handlers) upgradeSSE(w http.ResponseWriter, r *http.Request, params map[string]string) {
	token := r.Header.Get("X-Auth-Token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if _, ok := h.App.Sessions.Get(token); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sink := eventbus.NewSSESink(w)
	sub := &eventbus.Subscription{
		ID:          uuid.New().String(),
		Destination: "sse://" + r.RemoteAddr,
		Protocol:    "SSE",
	}
	h.Events.Subscribe(sub, sink)
	defer h.Events.Unsubscribe(sub.ID)

	<-r.Context().Done()
	sink.Close()
}
