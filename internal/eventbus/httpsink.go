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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"bmcd/internal/ojson"
)

// HTTPSink POSTs each Event document to a subscription's destination
// URI, retrying transient failures with jittered exponential backoff —
// the same idiom this service's BMC client uses for outbound Redfish
// calls, adapted from a request-scoped retry helper into a per-delivery
// one since event delivery has no caller waiting on the result.
type HTTPSink struct {
	Destination string
	Headers     map[string]string
	Client      *http.Client

	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewHTTPSink returns a sink posting to destination with default retry
// parameters.
func NewHTTPSink(destination string, headers map[string]string) *HTTPSink {
	return &HTTPSink{
		Destination: destination,
		Headers:     headers,
		Client:      &http.Client{Timeout: 10 * time.Second},
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Deliver implements Sink.
func (h *HTTPSink) Deliver(ctx context.Context, event *ojson.Object) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event: %w", err)
	}

	maxAttempts := h.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	baseDelay := h.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	maxDelay := h.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Destination, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("eventbus: build delivery request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range h.Headers {
			req.Header.Set(k, v)
		}

		resp, err := h.Client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			lastErr = fmt.Errorf("eventbus: delivery returned status %d", resp.StatusCode)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return lastErr
			}
		} else {
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}
		delay := baseDelay * time.Duration(1<<uint(attempt-1))
		if delay > maxDelay {
			delay = maxDelay
		}
		delay += time.Duration(rand.Float64() * float64(delay) * 0.2)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
