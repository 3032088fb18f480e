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

import (
	"strings"
	"testing"
)

func TestGetRegistryByPrefix(t *testing.T) {
	r, ok := GetRegistry("Base")
	if !ok || r != Base {
		t.Fatalf("expected Base registry by prefix lookup")
	}
}

func TestGetMessageRoundTrip(t *testing.T) {
	for _, r := range []*Registry{Base, Task, Heartbeat, Resource} {
		for _, m := range r.Messages {
			id := r.MessageID(m.Key)
			got, ok := GetMessage(id)
			if !ok {
				t.Fatalf("GetMessage(%q) not found", id)
			}
			if got.Key != m.Key {
				t.Fatalf("GetMessage(%q) = %+v, want key %q", id, got, m.Key)
			}
		}
	}
}

func TestGetMessageRejectsMalformedID(t *testing.T) {
	for _, id := range []string{"Base", "Base.GeneralError", "Base.1.GeneralError.extra.bits.bad", "not.a.valid.id"} {
		if _, ok := GetMessage(id); ok {
			t.Fatalf("expected GetMessage(%q) to fail", id)
		}
	}
}

func TestFillMessageArgsExactCount(t *testing.T) {
	for _, r := range []*Registry{Base, Task, Heartbeat, Resource} {
		for _, m := range r.Messages {
			args := make([]string, m.NumberOfArgs)
			for i := range args {
				args[i] = "x"
			}
			out := FillMessageArgs(args, m.Message)
			if strings.ContainsRune(out, '%') {
				t.Fatalf("%s.%s: residual placeholder in %q", r.Header.Prefix, m.Key, out)
			}
		}
	}
}

func TestFillMessageArgsOutOfRange(t *testing.T) {
	if got := FillMessageArgs(nil, "missing %1 here"); got != "" {
		t.Fatalf("expected empty string on out-of-range arg, got %q", got)
	}
}

func TestFillMessageArgsMalformedPlaceholder(t *testing.T) {
	if got := FillMessageArgs([]string{"a"}, "bad %x placeholder"); got != "" {
		t.Fatalf("expected empty string on malformed placeholder, got %q", got)
	}
}

func TestBuildLogEntryFields(t *testing.T) {
	entry := Base.BuildLogEntry("ResourceNotFound", "Task", "5")
	if entry == nil {
		t.Fatalf("expected non-nil entry")
	}
	msgID, _ := entry.Get("MessageId")
	if msgID != "Base.1.19.ResourceNotFound" {
		t.Fatalf("unexpected MessageId: %v", msgID)
	}
	msg, _ := entry.Get("Message")
	if msg != "The requested resource of type Task named 5 was not found." {
		t.Fatalf("unexpected Message: %v", msg)
	}
}

func TestBuildLogEntryFourDigitPolicy(t *testing.T) {
	UseFourDigitMessageID = true
	defer func() { UseFourDigitMessageID = false }()
	id := Base.MessageID("InternalError")
	if id != "Base.1.19.0.InternalError" {
		t.Fatalf("unexpected four-digit MessageId: %s", id)
	}
}

func TestBuildLogEntryUnknownKey(t *testing.T) {
	if Base.BuildLogEntry("DoesNotExist") != nil {
		t.Fatalf("expected nil entry for unknown key")
	}
}
