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

package session

import (
	"testing"
	"time"
)

func TestExpressionSatisfiedEmptyIsPublic(t *testing.T) {
	var e Expression
	if !e.Satisfied(NewPrivilegeSet()) {
		t.Fatalf("empty expression must be satisfied by anyone")
	}
}

func TestExpressionDNF(t *testing.T) {
	e := Expression{
		{PrivilegeConfigureManager},
		{PrivilegeConfigureComponents, PrivilegeConfigureSelf},
	}
	if e.Satisfied(NewPrivilegeSet(PrivilegeLogin)) {
		t.Fatalf("should not be satisfied by Login alone")
	}
	if !e.Satisfied(NewPrivilegeSet(PrivilegeConfigureManager)) {
		t.Fatalf("single clause ConfigureManager should satisfy")
	}
	if !e.Satisfied(NewPrivilegeSet(PrivilegeConfigureComponents, PrivilegeConfigureSelf)) {
		t.Fatalf("AND clause with both privileges should satisfy")
	}
	if e.Satisfied(NewPrivilegeSet(PrivilegeConfigureComponents)) {
		t.Fatalf("partial AND clause must not satisfy")
	}
}

func TestRoleTablePrivileges(t *testing.T) {
	admin, ok := GetRole("Administrator")
	if !ok {
		t.Fatalf("expected Administrator role")
	}
	for _, p := range []Privilege{PrivilegeLogin, PrivilegeConfigureManager, PrivilegeConfigureUsers, PrivilegeConfigureComponents, PrivilegeConfigureSelf} {
		if !admin.Privileges.Has(p) {
			t.Fatalf("Administrator missing privilege %s", p)
		}
	}
	readOnly, _ := GetRole("ReadOnly")
	if readOnly.Privileges.Has(PrivilegeConfigureComponents) {
		t.Fatalf("ReadOnly must not hold ConfigureComponents")
	}
	noAccess, _ := GetRole("NoAccess")
	if len(noAccess.Privileges) != 0 {
		t.Fatalf("NoAccess must hold no privileges")
	}
}

func TestAuthorizeConfigureSelfException(t *testing.T) {
	sess := &Session{Username: "alice", Privileges: NewPrivilegeSet(PrivilegeLogin, PrivilegeConfigureSelf)}
	required := RequireAny(PrivilegeConfigureUsers)

	if Authorize(sess, required, false) {
		t.Fatalf("alice must not manage other accounts with only ConfigureSelf")
	}
	if !Authorize(sess, required, true) {
		t.Fatalf("alice must be able to manage her own account with ConfigureSelf")
	}
}

func TestAuthorizeWithoutConfigureSelf(t *testing.T) {
	sess := &Session{Username: "bob", Privileges: NewPrivilegeSet(PrivilegeLogin)}
	required := RequireAny(PrivilegeConfigureUsers)
	if Authorize(sess, required, true) {
		t.Fatalf("bob lacks ConfigureSelf entirely, self-target exception must not apply")
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(time.Hour, 0)
	sess, err := store.Create("alice", "Operator", "127.0.0.1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, ok := store.Get(sess.ID)
	if !ok || got.Username != "alice" {
		t.Fatalf("expected to retrieve session for alice, got %+v ok=%v", got, ok)
	}
}

func TestStoreUnknownRole(t *testing.T) {
	store := NewStore(time.Hour, 0)
	if _, err := store.Create("alice", "SuperUser", ""); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestStoreIdleEviction(t *testing.T) {
	store := NewStore(time.Millisecond, 0)
	sess, _ := store.Create("alice", "ReadOnly", "")
	time.Sleep(5 * time.Millisecond)
	if _, ok := store.Get(sess.ID); ok {
		t.Fatalf("expected session to be evicted after idle timeout")
	}
}

func TestStorePerUserEviction(t *testing.T) {
	store := NewStore(0, 2)
	first, _ := store.Create("alice", "ReadOnly", "")
	store.Create("alice", "ReadOnly", "")
	if store.CountForUser("alice") != 2 {
		t.Fatalf("expected 2 sessions for alice")
	}
	store.Create("alice", "ReadOnly", "")
	if store.CountForUser("alice") != 2 {
		t.Fatalf("expected oldest-eviction to keep count at cap, got %d", store.CountForUser("alice"))
	}
	if _, ok := store.Get(first.ID); ok {
		t.Fatalf("expected the oldest session to have been evicted")
	}
}

func TestStoreDeleteAndCount(t *testing.T) {
	store := NewStore(0, 0)
	sess, _ := store.Create("alice", "ReadOnly", "")
	if store.Count() != 1 {
		t.Fatalf("expected 1 session")
	}
	store.Delete(sess.ID)
	if store.Count() != 0 {
		t.Fatalf("expected 0 sessions after delete")
	}
}

func TestStoreSweep(t *testing.T) {
	store := NewStore(time.Millisecond, 0)
	store.Create("alice", "ReadOnly", "")
	time.Sleep(5 * time.Millisecond)
	if n := store.Sweep(); n != 1 {
		t.Fatalf("expected Sweep to evict 1 session, got %d", n)
	}
	if store.Count() != 0 {
		t.Fatalf("expected 0 sessions after sweep")
	}
}
