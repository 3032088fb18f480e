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

package bmcapp

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// SocketMode classifies a named inherited listener by the suffix
// convention spec.md §6/§4.9 describes: "_http"/"_https"/"_both" select
// TCP plaintext, TLS-only, or hybrid handling; an unknown suffix
// defaults to TLS-only.
type SocketMode int

const (
	ModeHTTPS SocketMode = iota
	ModeHTTP
	ModeBoth
)

// NamedListener pairs an inherited listener with its supervisor-assigned
// name and the socket mode derived from that name's suffix.
type NamedListener struct {
	Name     string
	Listener net.Listener
	Mode     SocketMode
}

// InheritedListeners implements the supervisor-socket handshake (spec.md
// §4.9, §6): it reads the systemd socket-activation protocol's
// documented environment-variable form (LISTEN_PID, LISTEN_FDS,
// LISTEN_FDNAMES) rather than linking libsystemd, since no cgo
// sd_listen_fds binding is present anywhere in this retrieval pack's
// dependency set (SPEC_FULL.md §4.9) — the env-var form is how the same
// protocol is exposed to non-C programs, so behavior is identical.
// Descriptors start at fd 3 and are ordered to match LISTEN_FDNAMES.
func InheritedListeners() ([]NamedListener, error) {
	fdsEnv := os.Getenv("LISTEN_FDS")
	if fdsEnv == "" {
		return nil, nil
	}
	if pidEnv := os.Getenv("LISTEN_PID"); pidEnv != "" {
		pid, err := strconv.Atoi(pidEnv)
		if err != nil {
			return nil, fmt.Errorf("bmcapp: malformed LISTEN_PID %q: %w", pidEnv, err)
		}
		if pid != os.Getpid() {
			return nil, nil
		}
	}
	n, err := strconv.Atoi(fdsEnv)
	if err != nil {
		return nil, fmt.Errorf("bmcapp: malformed LISTEN_FDS %q: %w", fdsEnv, err)
	}
	if n <= 0 {
		return nil, nil
	}

	names := strings.Split(os.Getenv("LISTEN_FDNAMES"), ":")

	out := make([]NamedListener, 0, n)
	for i := 0; i < n; i++ {
		fd := 3 + i
		name := fmt.Sprintf("fd%d", fd)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}

		f := os.NewFile(uintptr(fd), name)
		l, err := net.FileListener(f)
		if err != nil {
			return nil, fmt.Errorf("bmcapp: wrap inherited fd %d (%s): %w", fd, name, err)
		}
		_ = f.Close() // FileListener dup'd the descriptor

		out = append(out, NamedListener{
			Name:     name,
			Listener: l,
			Mode:     modeFromName(name),
		})
	}
	return out, nil
}

func modeFromName(name string) SocketMode {
	switch {
	case strings.HasSuffix(name, "_http"):
		return ModeHTTP
	case strings.HasSuffix(name, "_both"):
		return ModeBoth
	case strings.HasSuffix(name, "_https"):
		return ModeHTTPS
	default:
		return ModeHTTPS
	}
}
