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

// Task is the compiled-in Task Event message registry consumed by
// internal/taskengine on every state transition.
var Task = &Registry{
	Header: Header{
		Copyright:    "Copyright 2014-2020 DMTF in cooperation with the Storage Networking Industry Association (SNIA). All rights reserved.",
		Type:         "MessageRegistry.v1_4_0.MessageRegistry",
		Prefix:       "TaskEvent",
		VersionMajor: 1,
		VersionMinor: 0,
		VersionPatch: 2,
		Name:         "Task Event Message Registry",
		Language:     "en",
		Description:  "This registry defines the messages for task related events.",
		OwningEntity: "DMTF",
	},
	Messages: []Message{
		{
			Key:          "TaskStarted",
			Description:  "A task has been started.",
			Message:      "The task with Id '%1' has started.",
			Severity:     "OK",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskAborted",
			Description:  "A task has been aborted.",
			Message:      "The task with Id '%1' has been aborted.",
			Severity:     "Critical",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskCancelled",
			Description:  "A task has been cancelled.",
			Message:      "The task with Id '%1' has been cancelled.",
			Severity:     "Warning",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskCompletedOK",
			Description:  "A task has completed.",
			Message:      "The task with Id '%1' has completed.",
			Severity:     "OK",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskCompletedWarning",
			Description:  "A task has completed with warnings.",
			Message:      "The task with Id '%1' has completed with warnings.",
			Severity:     "Warning",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskPaused",
			Description:  "A task has been paused.",
			Message:      "The task with Id '%1' has been paused.",
			Severity:     "Warning",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskProgressChanged",
			Description:  "A task has changed progress.",
			Message:      "The task with Id '%1' has changed to progress %2 percent complete.",
			Severity:     "OK",
			NumberOfArgs: 2,
			ParamTypes:   []string{"string", "number"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskRemoved",
			Description:  "A task has been removed.",
			Message:      "The task with Id '%1' has been removed.",
			Severity:     "Warning",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
		{
			Key:          "TaskResumed",
			Description:  "A task has been resumed.",
			Message:      "The task with Id '%1' has been resumed.",
			Severity:     "OK",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "None.",
		},
	},
}

func init() {
	Register(Task)
}
