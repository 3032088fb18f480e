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

// Base is the compiled-in Base message registry: a representative subset of
// the DMTF Base registry covering the error kinds spec.md §7 enumerates.
var Base = &Registry{
	Header: Header{
		Copyright:    "Copyright 2014-2024 DMTF",
		Type:         "MessageRegistry.v1_6_2.MessageRegistry",
		Prefix:       "Base",
		VersionMajor: 1,
		VersionMinor: 19,
		VersionPatch: 0,
		Name:         "Base Message Registry",
		Language:     "en",
		Description:  "This registry defines the base messages for Redfish",
		OwningEntity: "DMTF",
	},
	Messages: []Message{
		{
			Key:          "GeneralError",
			Description:  "Indicates that a general error has occurred.",
			Message:      "A general error has occurred. See Resolution for information on how to resolve the error.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "None.",
		},
		{
			Key:          "ResourceNotFound",
			Description:  "Indicates that the operation expected a resource identifier that corresponds to an existing resource but one was not found.",
			Message:      "The requested resource of type %1 named %2 was not found.",
			Severity:     "Critical",
			NumberOfArgs: 2,
			ParamTypes:   []string{"string", "string"},
			Resolution:   "Provide a valid resource identifier and resubmit the request.",
		},
		{
			Key:          "MethodNotAllowed",
			Description:  "Indicates that the HTTP method is not allowed on the given resource.",
			Message:      "The HTTP method is not allowed on this resource.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Use an allowed HTTP method for the target resource and resubmit the request.",
		},
		{
			Key:          "Unauthorized",
			Description:  "Indicates that the credentials supplied did not authenticate successfully.",
			Message:      "Access denied due to invalid credentials, or no credentials were supplied.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Provide valid credentials and resubmit the request.",
		},
		{
			Key:          "InsufficientPrivilege",
			Description:  "Indicates that the credentials associated with the established session do not have sufficient privileges for the requested operation.",
			Message:      "There are insufficient privileges for the account or credentials associated with the current session to perform the requested operation.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Either abandon the operation or change the associated access rights and resubmit the request if the operation failed.",
		},
		{
			Key:          "InternalError",
			Description:  "Indicates that the request failed for an unknown internal error but that the service is still operational.",
			Message:      "The request failed due to an internal service error. The service is still operational.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Resubmit the request. If the problem persists, consider resetting the service.",
		},
		{
			Key:          "MalformedJSON",
			Description:  "Indicates that the request body was malformed JSON.",
			Message:      "The request body submitted was malformed JSON and could not be parsed by the receiving service.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Ensure that the request body is valid JSON and resubmit the request.",
		},
		{
			Key:          "PropertyMissing",
			Description:  "Indicates that a required property was not supplied as part of the request.",
			Message:      "The property %1 is a required property and must be included in the request.",
			Severity:     "Warning",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "Ensure that the property is in the request body and has a valid value and resubmit the request if the operation failed.",
		},
		{
			Key:          "PropertyValueNotInList",
			Description:  "Indicates that a property was given a value not in its enumeration.",
			Message:      "The value %1 for the property %2 is not in the list of acceptable values.",
			Severity:     "Warning",
			NumberOfArgs: 2,
			ParamTypes:   []string{"string", "string"},
			Resolution:   "Choose a value from the enumeration list that the implementation can support and resubmit the request if the operation failed.",
		},
		{
			Key:          "PropertyValueFormatError",
			Description:  "Indicates that a property was given the correct value type but the value of that property was not supported.",
			Message:      "The value %1 for the property %2 is of a different format than the property can accept.",
			Severity:     "Warning",
			NumberOfArgs: 2,
			ParamTypes:   []string{"string", "string"},
			Resolution:   "Correct the value for the property in the request body and resubmit the request if the operation failed.",
		},
		{
			Key:          "ResourceCannotBeCreated",
			Description:  "Indicates that a resource could not be created.",
			Message:      "The resource could not be created.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Verify the request data and permissions, correct any issues, and resubmit.",
		},
		{
			Key:          "ResourceInStandby",
			Description:  "Indicates that the request could not be performed because the resource is in standby.",
			Message:      "The request could not be performed because the resource is in standby.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Ensure that the resource is in the correct power state and resubmit the request.",
		},
		{
			Key:          "PreconditionFailed",
			Description:  "Indicates that the ETag supplied did not match the current ETag of the resource.",
			Message:      "The ETag supplied did not match the ETag required to change this resource.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Try the operation again using the appropriate ETag.",
		},
		{
			Key:          "PreconditionRequired",
			Description:  "Indicates that the request did not provide the required precondition.",
			Message:      "A precondition header or annotation is required to change this resource.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Resubmit the request with an If-Match or If-None-Match header, or @odata.etag annotation.",
		},
		{
			Key:          "ServiceTemporarilyUnavailable",
			Description:  "Indicates the service is temporarily unavailable.",
			Message:      "The service is temporarily unavailable. Retry in %1 seconds.",
			Severity:     "Critical",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "Wait for the indicated retry duration and retry the operation.",
		},
		{
			Key:          "CreateLimitReachedForResource",
			Description:  "Indicates that no more resources can be created on the resource as it has reached its create limit.",
			Message:      "The create operation failed because the resource has reached the limit of possible resources.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "Either delete resources and resubmit the request if the operation failed or do not resubmit the request.",
		},
		{
			Key:          "QueryNotSupportedOnResource",
			Description:  "Indicates that query is not supported on the given resource.",
			Message:      "Querying is not supported on the requested resource.",
			Severity:     "Warning",
			NumberOfArgs: 0,
			Resolution:   "Remove the query parameters and resubmit the request if the operation failed.",
		},
		{
			Key:          "ActionNotSupported",
			Description:  "Indicates that the action supplied with the POST operation is not supported by the resource.",
			Message:      "The action %1 is not supported by the resource.",
			Severity:     "Critical",
			NumberOfArgs: 1,
			ParamTypes:   []string{"string"},
			Resolution:   "The action supplied cannot be resubmitted to the implementation. Perhaps the action was invalid, the wrong resource was the target, or the implementation documentation may be of assistance.",
		},
		{
			Key:          "NotImplemented",
			Description:  "Indicates that the requested operation is not implemented.",
			Message:      "The requested operation is not implemented.",
			Severity:     "Critical",
			NumberOfArgs: 0,
			Resolution:   "None.",
		},
	},
}

func init() {
	Register(Base)
}
