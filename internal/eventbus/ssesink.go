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

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"bmcd/internal/ojson"
)

// SSESink streams Event documents as Server-Sent Events over a single
// long-lived connection, the one concrete upgrade path
// internal/router.UpgradeFunc exercises (spec.md §4.5 bullet 5, "protocol
// upgrade... when an upgrade handler is registered"). One SSESink is
// created per accepted connection by the router's upgrade hook.
type SSESink struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	closed bool
}

// NewSSESink writes the SSE response headers to w and returns a sink
// that streams events to it until the connection closes.
func NewSSESink(w http.ResponseWriter) *SSESink {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return &SSESink{w: w}
}

// Deliver implements Sink by writing one "data: <json>\n\n" frame and
// flushing it immediately.
func (s *SSESink) Deliver(ctx context.Context, event *ojson.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("eventbus: sse sink closed")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: marshal sse event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", body); err != nil {
		s.closed = true
		return fmt.Errorf("eventbus: write sse frame: %w", err)
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Close marks the sink unusable after the underlying connection ends.
func (s *SSESink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
