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

// Package account is the minimal user-credential collaborator the login
// endpoint and AccountService handlers need: a username/password/role
// record, bcrypt-hashed exactly as the teacher's default-admin bootstrap
// does in cmd/shoal/main.go. The account store itself is outside
// spec.md's four core subsystems (§1: "specific resource handlers... are
// an external collaborator") — this package exists only so
// internal/handlers has something concrete to authenticate against.
package account

import (
	"fmt"
	"sort"
	"sync"

	"bmcd/pkg/auth"
)

// Account is one local user record.
type Account struct {
	Username     string
	PasswordHash string
	RoleName     string
	Enabled      bool
}

// Store holds accounts in memory, guarded by a mutex since handlers run
// one goroutine per request (SPEC_FULL.md §5).
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewStore returns an empty account store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*Account)}
}

// Create adds a new account, hashing password with pkg/auth.HashPassword.
func (s *Store) Create(username, password, roleName string) error {
	if username == "" || password == "" {
		return fmt.Errorf("account: username and password are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("account: hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &Account{
		Username:     username,
		PasswordHash: string(hash),
		RoleName:     roleName,
		Enabled:      true,
	}
	return nil
}

// Get returns the account by username.
func (s *Store) Get(username string) (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[username]
	return a, ok
}

// List returns every account ordered by username, for the Accounts
// collection endpoint — ranging a Go map directly would flap the
// Members array order across calls.
func (s *Store) List() []*Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Authenticate verifies username/password and returns the account's role
// name on success.
func (s *Store) Authenticate(username, password string) (roleName string, ok bool) {
	s.mu.RLock()
	a, exists := s.accounts[username]
	s.mu.RUnlock()
	if !exists || !a.Enabled {
		return "", false
	}
	if auth.VerifyPassword(password, a.PasswordHash) != nil {
		return "", false
	}
	return a.RoleName, true
}

// SetPassword rehashes password for username, used by the ConfigureSelf
// password-change endpoint (PATCH on an account).
func (s *Store) SetPassword(username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("account: hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return fmt.Errorf("account: unknown user %q", username)
	}
	a.PasswordHash = string(hash)
	return nil
}
