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

// Resource is the compiled-in Resource Event message registry of
// lifecycle messages for inventory resources (creation, removal,
// detected errors). It is served under /redfish/v1/Registries; no
// handler in this repository publishes its messages.
var Resource = &Registry{
	Header: Header{
		Copyright:    "Copyright 2014-2020 DMTF in cooperation with the Storage Networking Industry Association (SNIA). All rights reserved.",
		Type:         "MessageRegistry.v1_4_0.MessageRegistry",
		Prefix:       "ResourceEvent",
		VersionMajor: 1,
		VersionMinor: 0,
		VersionPatch: 3,
		Name:         "Resource Event Message Registry",
		Language:     "en",
		Description:  "This registry defines the messages to use for resource events.",
		OwningEntity: "DMTF",
	},
	Messages: []Message{
		{
			Key:          "ResourceCreated",
			Description:  "Indicates that all conditions of a successful creation operation have been met.",
			Message:      "The resource has been created successfully.",
			Severity:     "OK",
			NumberOfArgs: 0,
			Resolution:   "None.",
		},
		{
			Key:          "ResourceRemoved",
			Description:  "Indicates that all conditions of a successful remove operation have been met.",
			Message:      "The resource has been removed successfully.",
			Severity:     "OK",
			NumberOfArgs: 0,
			Resolution:   "None.",
		},
		{
			Key:          "ResourceChanged",
			Description:  "Indicates that one or more resource properties have changed.",
			Message:      "One or more resource properties have changed.",
			Severity:     "OK",
			NumberOfArgs: 0,
			Resolution:   "None.",
		},
		{
			Key:          "ResourceErrorsDetected",
			Description:  "Indicates that a specified resource property has detected errors.",
			Message:      "The resource property %1 has detected errors of type '%2'.",
			Severity:     "Warning",
			NumberOfArgs: 2,
			ParamTypes:   []string{"string", "string"},
			Resolution:   "Resolution dependent upon error type.",
		},
	},
}

func init() {
	Register(Resource)
}
