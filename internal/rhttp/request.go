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

package rhttp

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"bmcd/internal/session"
)

// Request wraps the inbound *http.Request with the fields the router and
// handlers need once a route has matched: the typed path parameters the
// route template extracted, the caller's session (nil for anonymous
// requests to public resources), and the correlation id this request is
// logged under.
type Request struct {
	*http.Request

	// Params holds the decoded values for each named route hole
	// (<str>, <int>, <uint>, <double>, <path>), keyed by the route's
	// declared parameter name.
	Params map[string]string

	// Session is the authenticated session for this request, or nil if
	// the caller is unauthenticated.
	Session *session.Session

	// CorrelationID identifies this request across log lines; it is
	// never a session id (session ids must not be logged).
	CorrelationID string

	jsonOnce sync.Once
	jsonBody *JSONObject
	jsonErr  error
}

// Param returns a decoded route parameter by name.
func (r *Request) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Authenticated reports whether the request carries a valid session.
func (r *Request) Authenticated() bool {
	return r.Session != nil
}

// IsJSONContentType reports whether the request's Content-Type is
// "application/json", with or without a "; charset=utf-8" suffix,
// matched case-insensitively — the gate spec.md §4.4 requires before a
// handler treats the body as JSON.
func (r *Request) IsJSONContentType() bool {
	ct := r.Header.Get("Content-Type")
	ct = strings.TrimSpace(strings.ToLower(ct))
	if semi := strings.IndexByte(ct, ';'); semi >= 0 {
		params := strings.TrimSpace(ct[semi+1:])
		ct = strings.TrimSpace(ct[:semi])
		if params != "" && params != "charset=utf-8" {
			return false
		}
	}
	return ct == "application/json"
}

// JSON lazily parses the request body as an ordered JSON object, caching
// the result (and any error) so repeated calls across a handler chain
// don't re-read the body. Returns an error if the body isn't valid JSON
// or the request isn't JSON content-typed.
func (r *Request) JSON() (*JSONObject, error) {
	r.jsonOnce.Do(func() {
		if !r.IsJSONContentType() {
			r.jsonErr = fmt.Errorf("rhttp: request is not JSON content-typed")
			return
		}
		if r.Body == nil {
			r.jsonErr = fmt.Errorf("rhttp: request has no body")
			return
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			r.jsonErr = fmt.Errorf("rhttp: read request body: %w", err)
			return
		}
		obj := NewJSONObject()
		if err := obj.UnmarshalJSON(data); err != nil {
			r.jsonErr = fmt.Errorf("rhttp: parse request body: %w", err)
			return
		}
		r.jsonBody = obj
	})
	return r.jsonBody, r.jsonErr
}
