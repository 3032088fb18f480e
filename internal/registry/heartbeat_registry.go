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

package registry

// Heartbeat is the compiled-in Heartbeat Event registry, used by
// internal/eventbus's periodic keep-alive publisher.
var Heartbeat = &Registry{
	Header: Header{
		Copyright:    "Copyright 2021-2023 DMTF. All rights reserved.",
		Type:         "MessageRegistry.v1_6_2.MessageRegistry",
		Prefix:       "HeartbeatEvent",
		VersionMajor: 1,
		VersionMinor: 0,
		VersionPatch: 1,
		Name:         "Heartbeat Event Message Registry",
		Language:     "en",
		Description:  "This registry defines the messages to use for periodic heartbeat, also known as 'keep alive', events.",
		OwningEntity: "DMTF",
	},
	Messages: []Message{
		{
			Key:          "RedfishServiceFunctional",
			Description:  "An event sent periodically upon request to indicate that the Redfish service is functional.",
			Message:      "Redfish service is functional.",
			Severity:     "OK",
			NumberOfArgs: 0,
			Resolution:   "None.",
		},
	},
}

func init() {
	Register(Heartbeat)
}
