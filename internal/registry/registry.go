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

// Package registry implements the compiled-in Redfish message registries:
// immutable tables of message templates, looked up by prefix or by a
// MessageId, with %N argument substitution.
package registry

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"bmcd/internal/ojson"
)

// Header describes a registry's identity, mirroring the DMTF registry header.
type Header struct {
	Copyright    string
	Type         string
	Prefix       string
	VersionMajor uint
	VersionMinor uint
	VersionPatch uint
	Name         string
	Language     string
	Description  string
	OwningEntity string
}

// Message is an immutable message template.
type Message struct {
	Key          string
	Description  string
	Message      string
	Severity     string
	NumberOfArgs int
	ParamTypes   []string
	Resolution   string
}

// Registry is a header plus an ordered set of messages, looked up by key.
type Registry struct {
	Header   Header
	Messages []Message

	byKey map[string]int
}

// UseFourDigitMessageID switches buildLogEntry's MessageId format between
// the three-dot (Prefix.Major.Minor.Key) and four-dot
// (Prefix.Major.Minor.Patch.Key) forms, mirroring
// BMCWEB_REDFISH_USE_3_DIGIT_MESSAGEID from the original implementation.
var UseFourDigitMessageID = false

var (
	mu         sync.RWMutex
	byPrefix   = map[string]*Registry{}
)

// Register compiles r's key index and adds it to the global by-prefix map.
// Intended to be called from each registry file's init().
func Register(r *Registry) {
	r.byKey = make(map[string]int, len(r.Messages))
	for i, m := range r.Messages {
		r.byKey[m.Key] = i
	}
	mu.Lock()
	defer mu.Unlock()
	byPrefix[r.Header.Prefix] = r
}

// GetRegistry returns the registry registered under prefix, if any. Version
// is informational only — lookup is by prefix alone.
func GetRegistry(prefix string) (*Registry, bool) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := byPrefix[prefix]
	return r, ok
}

// Lookup returns the message registered under key within the registry, if
// both the registry and the key exist.
func (r *Registry) Lookup(key string) (*Message, bool) {
	idx, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return &r.Messages[idx], true
}

// GetMessage resolves a MessageId of shape Prefix.Major.Minor[.Patch].Key
// into its registered Message. Any other shape is rejected.
func GetMessage(messageID string) (*Message, bool) {
	parts := strings.Split(messageID, ".")
	if len(parts) != 4 && len(parts) != 5 {
		return nil, false
	}
	prefix := parts[0]
	key := parts[len(parts)-1]
	for _, versionPart := range parts[1 : len(parts)-1] {
		if _, err := strconv.Atoi(versionPart); err != nil {
			return nil, false
		}
	}
	r, ok := GetRegistry(prefix)
	if !ok {
		return nil, false
	}
	return r.Lookup(key)
}

// FillMessageArgs substitutes 1-indexed %N placeholders in template with
// args[N-1]. Any out-of-range or malformed placeholder is treated as a
// failure and signalled by returning an empty string, matching the
// original implementation's fillMessageArgs contract.
func FillMessageArgs(args []string, template string) string {
	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		idx := strings.IndexByte(rest, '%')
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		rest = rest[idx+1:]
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 {
			return ""
		}
		n, err := strconv.Atoi(rest[:end])
		if err != nil {
			return ""
		}
		n-- // 1-indexed
		if n < 0 || n >= len(args) {
			return ""
		}
		b.WriteString(args[n])
		rest = rest[end:]
	}
	return b.String()
}

// MessageID formats a message's fully-qualified id per the registry's
// header and the package-level three/four-dot policy.
func (r *Registry) MessageID(key string) string {
	if UseFourDigitMessageID {
		return fmt.Sprintf("%s.%d.%d.%d.%s", r.Header.Prefix, r.Header.VersionMajor, r.Header.VersionMinor, r.Header.VersionPatch, key)
	}
	return fmt.Sprintf("%s.%d.%d.%s", r.Header.Prefix, r.Header.VersionMajor, r.Header.VersionMinor, key)
}

// BuildLogEntry renders a Message object as specified in spec.md §4.1:
// {@odata.type, MessageId, Message, MessageArgs, MessageSeverity, Resolution}.
func (r *Registry) BuildLogEntry(key string, args ...string) *ojson.Object {
	m, ok := r.Lookup(key)
	if !ok {
		return nil
	}
	msg := FillMessageArgs(args, m.Message)
	jsonArgs := make([]any, len(args))
	for i, a := range args {
		jsonArgs[i] = a
	}
	return ojson.NewObject().
		Set("@odata.type", "#Message.v1_1_1.Message").
		Set("MessageId", r.MessageID(key)).
		Set("Message", msg).
		Set("MessageArgs", jsonArgs).
		Set("MessageSeverity", m.Severity).
		Set("Resolution", m.Resolution)
}
