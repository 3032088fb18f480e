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

// Package rferr builds the standard Redfish error envelope
// ({"error": {"code", "message", "@Message.ExtendedInfo": [...]}}) and maps
// error kinds to HTTP status codes, generalizing rfWriteErrorResponse from
// the aggregator this core descends from to work off compiled-in
// internal/registry messages instead of a hardcoded map.
package rferr

import (
	"net/http"

	"bmcd/internal/ojson"
	"bmcd/internal/registry"
)

// messageAnnotation is the Redfish-standard extended-info property name.
const messageAnnotation = "@Message.ExtendedInfo"

// Builder accumulates Message objects into a Redfish error envelope,
// applying the "first message wins, rest degrade to GeneralError" rule.
type Builder struct {
	code    any
	message any
	info    []*ojson.Object
}

// NewBuilder returns an empty error accumulator.
func NewBuilder() *Builder {
	return &Builder{}
}

// Empty reports whether no message has been added yet.
func (b *Builder) Empty() bool {
	return len(b.info) == 0
}

// Add resolves key in reg and appends the resulting message to the error
// envelope. If the key is unknown, a GeneralError entry is substituted
// (spec.md §7: "argument substitution must succeed or the framework
// substitutes GeneralError").
func (b *Builder) Add(reg *registry.Registry, key string, args ...string) {
	entry := reg.BuildLogEntry(key, args...)
	if entry == nil {
		entry = registry.Base.BuildLogEntry("GeneralError")
	}
	b.addEntry(entry)
}

func (b *Builder) addEntry(entry *ojson.Object) {
	if len(b.info) == 0 {
		b.code, _ = entry.Get("MessageId")
		b.message, _ = entry.Get("Message")
	} else {
		b.code = registry.Base.MessageID("GeneralError")
		b.message = "A general error has occurred. See Resolution for information on how to resolve the error."
	}
	b.info = append(b.info, entry)
}

// Merge appends other's accumulated messages into b, applying the same
// degrade rule, then clears other. Used to fold a sub-operation's errors
// into the top-level envelope without duplicating content.
func (b *Builder) Merge(other *Builder) {
	if other == nil {
		return
	}
	for _, entry := range other.info {
		b.addEntry(entry)
	}
	other.info = nil
	other.code = nil
	other.message = nil
}

// Envelope renders the accumulated messages as the standard error document.
// Returns nil if no messages were added.
func (b *Builder) Envelope() *ojson.Object {
	if b.Empty() {
		return nil
	}
	info := make([]any, len(b.info))
	for i, e := range b.info {
		info[i] = e
	}
	errObj := ojson.NewObject().
		Set("code", b.code).
		Set("message", b.message).
		Set(messageAnnotation, info)
	return ojson.NewObject().Set("error", errObj)
}

// Kind names the error-kind vocabulary from spec.md §7, each bound to a
// fixed HTTP status.
type Kind int

const (
	KindMalformed Kind = iota
	KindAuthMissing
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindNotAcceptable
	KindPreconditionFailed
	KindPreconditionRequired
	KindConflict
	KindUnsupportedMediaType
	KindInternal
	KindServiceUnavailable
)

var statusForKind = map[Kind]int{
	KindMalformed:            http.StatusBadRequest,
	KindAuthMissing:          http.StatusUnauthorized,
	KindForbidden:            http.StatusForbidden,
	KindNotFound:             http.StatusNotFound,
	KindMethodNotAllowed:     http.StatusMethodNotAllowed,
	KindNotAcceptable:        http.StatusNotAcceptable,
	KindPreconditionFailed:   http.StatusPreconditionFailed,
	KindPreconditionRequired: http.StatusPreconditionRequired,
	KindConflict:             http.StatusConflict,
	KindUnsupportedMediaType: http.StatusUnsupportedMediaType,
	KindInternal:             http.StatusInternalServerError,
	KindServiceUnavailable:   http.StatusServiceUnavailable,
}

// StatusForKind returns the fixed HTTP status for an error kind.
func StatusForKind(k Kind) int {
	return statusForKind[k]
}

// NotFound adds a ResourceNotFound message and returns its HTTP status.
func (b *Builder) NotFound(resourceType, name string) int {
	b.Add(registry.Base, "ResourceNotFound", resourceType, name)
	return StatusForKind(KindNotFound)
}

// Unauthorized adds a NoValidSession-equivalent Unauthorized message.
func (b *Builder) Unauthorized() int {
	b.Add(registry.Base, "Unauthorized")
	return StatusForKind(KindAuthMissing)
}

// InsufficientPrivilege adds the privilege-denied message.
func (b *Builder) InsufficientPrivilege() int {
	b.Add(registry.Base, "InsufficientPrivilege")
	return StatusForKind(KindForbidden)
}

// MethodNotAllowed adds the method-not-allowed message.
func (b *Builder) MethodNotAllowed() int {
	b.Add(registry.Base, "MethodNotAllowed")
	return StatusForKind(KindMethodNotAllowed)
}

// MalformedJSON adds the malformed-JSON message.
func (b *Builder) MalformedJSON() int {
	b.Add(registry.Base, "MalformedJSON")
	return StatusForKind(KindMalformed)
}

// PropertyMissing adds a missing-required-property message.
func (b *Builder) PropertyMissing(property string) int {
	b.Add(registry.Base, "PropertyMissing", property)
	return StatusForKind(KindMalformed)
}

// PropertyValueNotInList adds a value-not-in-enum message.
func (b *Builder) PropertyValueNotInList(value, property string) int {
	b.Add(registry.Base, "PropertyValueNotInList", value, property)
	return StatusForKind(KindMalformed)
}

// PropertyValueFormatError adds a wrong-format-value message.
func (b *Builder) PropertyValueFormatError(value, property string) int {
	b.Add(registry.Base, "PropertyValueFormatError", value, property)
	return StatusForKind(KindMalformed)
}

// InternalError adds an InternalError message.
func (b *Builder) InternalError() int {
	b.Add(registry.Base, "InternalError")
	return StatusForKind(KindInternal)
}

// ServiceUnavailable adds a ServiceTemporarilyUnavailable message.
func (b *Builder) ServiceUnavailable(retryAfterSeconds string) int {
	b.Add(registry.Base, "ServiceTemporarilyUnavailable", retryAfterSeconds)
	return StatusForKind(KindServiceUnavailable)
}

// PreconditionFailed adds an ETag-mismatch message.
func (b *Builder) PreconditionFailed() int {
	b.Add(registry.Base, "PreconditionFailed")
	return StatusForKind(KindPreconditionFailed)
}

// PreconditionRequired adds a missing-precondition-header message.
func (b *Builder) PreconditionRequired() int {
	b.Add(registry.Base, "PreconditionRequired")
	return StatusForKind(KindPreconditionRequired)
}

// ResourceCannotBeCreated adds a creation-conflict message.
func (b *Builder) ResourceCannotBeCreated() int {
	b.Add(registry.Base, "ResourceCannotBeCreated")
	return StatusForKind(KindConflict)
}

// ActionNotSupported adds an unsupported-action message.
func (b *Builder) ActionNotSupported(action string) int {
	b.Add(registry.Base, "ActionNotSupported", action)
	return StatusForKind(KindNotFound)
}

// NotImplemented adds a not-implemented message.
func (b *Builder) NotImplemented() int {
	b.Add(registry.Base, "NotImplemented")
	return StatusForKind(KindInternal)
}
