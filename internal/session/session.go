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

// Package session implements the Redfish session and privilege model: a
// DNF privilege expression evaluator, the predefined Administrator /
// Operator / ReadOnly / NoAccess role table (grounded on this service's
// own AccountService role literals), and an in-memory Session store with
// idle-timeout and per-user eviction.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Privilege names the Redfish base privileges this core understands.
type Privilege string

const (
	PrivilegeLogin                Privilege = "Login"
	PrivilegeConfigureManager     Privilege = "ConfigureManager"
	PrivilegeConfigureUsers       Privilege = "ConfigureUsers"
	PrivilegeConfigureComponents  Privilege = "ConfigureComponents"
	PrivilegeConfigureSelf        Privilege = "ConfigureSelf"
	PrivilegeNoAccess             Privilege = "NoAccess"
)

// PrivilegeSet is an unordered collection of held privileges.
type PrivilegeSet map[Privilege]struct{}

// NewPrivilegeSet builds a PrivilegeSet from individual privileges.
func NewPrivilegeSet(privs ...Privilege) PrivilegeSet {
	s := make(PrivilegeSet, len(privs))
	for _, p := range privs {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is held.
func (s PrivilegeSet) Has(p Privilege) bool {
	_, ok := s[p]
	return ok
}

// clone returns a shallow copy so callers can augment it without mutating
// the session's own set.
func (s PrivilegeSet) clone() PrivilegeSet {
	out := make(PrivilegeSet, len(s)+1)
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Expression is a privilege requirement in disjunctive normal form: an OR
// of AND-clauses. An empty Expression requires nothing and is always
// satisfied (used for anonymous/public resources).
type Expression [][]Privilege

// RequireAny builds a single-privilege-per-clause expression: any one of
// the given privileges is sufficient.
func RequireAny(privs ...Privilege) Expression {
	e := make(Expression, len(privs))
	for i, p := range privs {
		e[i] = []Privilege{p}
	}
	return e
}

// RequireAll builds a single clause requiring every given privilege.
func RequireAll(privs ...Privilege) Expression {
	return Expression{append([]Privilege{}, privs...)}
}

// Satisfied reports whether have satisfies e: at least one clause whose
// every privilege is held.
func (e Expression) Satisfied(have PrivilegeSet) bool {
	if len(e) == 0 {
		return true
	}
	for _, clause := range e {
		ok := true
		for _, p := range clause {
			if !have.Has(p) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Role is a named, predefined bundle of privileges.
type Role struct {
	Name         string
	Privileges   PrivilegeSet
	IsPredefined bool
}

// roles mirrors the AccountService /Roles collection this service exposes:
// Administrator, Operator and ReadOnly privilege sets are the same
// literals returned by the role-lookup endpoint; NoAccess is added for
// disabled accounts and carries no privileges.
var roles = map[string]*Role{
	"Administrator": {
		Name:         "Administrator",
		IsPredefined: true,
		Privileges: NewPrivilegeSet(
			PrivilegeLogin,
			PrivilegeConfigureManager,
			PrivilegeConfigureUsers,
			PrivilegeConfigureComponents,
			PrivilegeConfigureSelf,
		),
	},
	"Operator": {
		Name:         "Operator",
		IsPredefined: true,
		Privileges: NewPrivilegeSet(
			PrivilegeLogin,
			PrivilegeConfigureComponents,
			PrivilegeConfigureSelf,
		),
	},
	"ReadOnly": {
		Name:         "ReadOnly",
		IsPredefined: true,
		Privileges: NewPrivilegeSet(
			PrivilegeLogin,
			PrivilegeConfigureSelf,
		),
	},
	"NoAccess": {
		Name:         "NoAccess",
		IsPredefined: true,
		Privileges:   NewPrivilegeSet(),
	},
}

// GetRole looks up a predefined role by name.
func GetRole(name string) (*Role, bool) {
	r, ok := roles[name]
	return r, ok
}

// RoleNames returns the predefined role names in the service's own
// canonical ordering.
func RoleNames() []string {
	return []string{"Administrator", "Operator", "ReadOnly", "NoAccess"}
}

// Session is an authenticated client session.
type Session struct {
	ID           string
	Username     string
	RoleName     string
	Privileges   PrivilegeSet
	ClientOrigin string
	CreatedAt    time.Time
	LastAccess   time.Time
}

// Authorize decides whether sess may perform an operation gated by
// required. When the operation targets the caller's own account
// (selfTarget), ConfigureSelf is admitted as a stand-in for
// ConfigureUsers: a user who can only configure themselves may still
// change their own password even though they lack account-management
// privilege generally. This mirrors the self-service exception the
// Redfish privilege model carves out for personal account operations.
func Authorize(sess *Session, required Expression, selfTarget bool) bool {
	have := sess.Privileges
	if selfTarget && have.Has(PrivilegeConfigureSelf) {
		augmented := have.clone()
		augmented[PrivilegeConfigureUsers] = struct{}{}
		have = augmented
	}
	return required.Satisfied(have)
}

func newSessionID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("session: failed to generate session id: %v", err))
	}
	return hex.EncodeToString(buf[:])
}

// Store holds active sessions in memory, evicting idle sessions and
// bounding the number of concurrent sessions per user.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	byUser      map[string][]string // usernames -> session ids, oldest first
	idleTimeout time.Duration
	maxPerUser  int
}

// NewStore builds a session store. idleTimeout of zero disables idle
// eviction; maxPerUser of zero disables the per-user cap.
func NewStore(idleTimeout time.Duration, maxPerUser int) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		byUser:      make(map[string][]string),
		idleTimeout: idleTimeout,
		maxPerUser:  maxPerUser,
	}
}

// Create starts a new session for username with the given role, evicting
// the user's oldest session first if the per-user cap would be exceeded.
func (s *Store) Create(username, roleName, clientOrigin string) (*Session, error) {
	now := time.Now()
	return s.insert(newSessionID(), username, roleName, clientOrigin, now, now, true)
}

// Restore re-inserts a session recovered from internal/store, skipping
// the per-user eviction Create applies on fresh logins — a restart
// should not silently drop a client's session just because several of
// that user's sessions were alive when the process stopped.
func (s *Store) Restore(id, username, roleName, clientOrigin string, createdAtUnix, lastAccessUnix int64) (*Session, error) {
	return s.insert(id, username, roleName, clientOrigin, time.Unix(createdAtUnix, 0), time.Unix(lastAccessUnix, 0), false)
}

func (s *Store) insert(id, username, roleName, clientOrigin string, createdAt, lastAccess time.Time, enforceCap bool) (*Session, error) {
	role, ok := GetRole(roleName)
	if !ok {
		return nil, fmt.Errorf("session: unknown role %q", roleName)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if enforceCap && s.maxPerUser > 0 {
		for len(s.byUser[username]) >= s.maxPerUser {
			oldest := s.byUser[username][0]
			s.deleteLocked(oldest)
		}
	}

	sess := &Session{
		ID:           id,
		Username:     username,
		RoleName:     role.Name,
		Privileges:   role.Privileges,
		ClientOrigin: clientOrigin,
		CreatedAt:    createdAt,
		LastAccess:   lastAccess,
	}
	s.sessions[sess.ID] = sess
	s.byUser[username] = append(s.byUser[username], sess.ID)
	return sess, nil
}

// Export returns a value-copy snapshot of every active session, safe for
// a caller (internal/store's periodic persistence) to range over without
// holding the store's lock.
func (s *Store) Export() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	return out
}

// Get returns the session by id, touching its last-access time. Returns
// false if the session does not exist or has exceeded the idle timeout,
// in which case it is evicted as a side effect.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.idleTimeout > 0 && time.Since(sess.LastAccess) > s.idleTimeout {
		s.deleteLocked(id)
		return nil, false
	}
	sess.LastAccess = time.Now()
	return sess, true
}

// Delete removes a session by id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
}

func (s *Store) deleteLocked(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)
	ids := s.byUser[sess.Username]
	for i, sid := range ids {
		if sid == id {
			s.byUser[sess.Username] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byUser[sess.Username]) == 0 {
		delete(s.byUser, sess.Username)
	}
}

// Sweep evicts all sessions idle longer than the configured timeout and
// returns the number removed. Intended to run on a periodic timer; Get
// already evicts lazily, Sweep reclaims sessions nobody has touched.
func (s *Store) Sweep() int {
	if s.idleTimeout <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastAccess) > s.idleTimeout {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.deleteLocked(id)
	}
	return len(expired)
}

// IDs returns every active session id, for the Sessions collection
// endpoint. Order is unspecified.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	return out
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CountForUser returns the number of active sessions for username.
func (s *Store) CountForUser(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser[username])
}
