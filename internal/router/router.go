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

// Package router implements the typed-URL-template dispatch engine: route
// templates compiled into a trie over literal and typed-hole segments,
// privilege-gated dispatch, and standard 404/405/401/403 handling. It
// generalizes the flat *http.ServeMux this service used to register one
// literal path per resource into the templated routing this engine's
// original request-routing layer provided natively.
package router

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"bmcd/internal/rhttp"
	"bmcd/internal/session"
)

// Handler serves one method on a matched route.
type Handler func(req *rhttp.Request, resp *rhttp.Response)

// UpgradeFunc handles a protocol upgrade (e.g. to a Server-Sent Events
// stream) for a matched route, bypassing the normal Response lifecycle.
type UpgradeFunc func(w http.ResponseWriter, r *http.Request, params map[string]string)

// Route is a compiled template with its registered methods.
type Route struct {
	Pattern    string
	segments   []segment
	paramNames []string

	handlers   map[string]Handler
	privileges map[string]session.Expression
	selfParam  string
	upgrade    UpgradeFunc
}

type node struct {
	literalChildren map[string]*node
	paramChildren   map[ParamKind]*node
	route           *Route
}

func newNode() *node {
	return &node{
		literalChildren: make(map[string]*node),
		paramChildren:   make(map[ParamKind]*node),
	}
}

// Router dispatches requests to compiled Route templates.
type Router struct {
	mu     sync.RWMutex
	root   *node
	routes []*Route
}

// New returns an empty router.
func New() *Router {
	return &Router{root: newNode()}
}

// Handle registers h to serve method on pattern, gated by the privilege
// expression required. paramNames must name exactly as many parameters as
// pattern has typed holes, in left-to-right order; this is the router's
// arity check, performed at registration time rather than per-request.
func (rt *Router) Handle(pattern, method string, required session.Expression, paramNames []string, h Handler) error {
	segs, err := parsePattern(pattern)
	if err != nil {
		return err
	}
	if n := holeCount(segs); n != len(paramNames) {
		return &ArityError{Pattern: pattern, Holes: n, Names: len(paramNames)}
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	n := rt.root
	for _, seg := range segs {
		if seg.isHole {
			child, ok := n.paramChildren[seg.kind]
			if !ok {
				child = newNode()
				n.paramChildren[seg.kind] = child
			}
			n = child
		} else {
			child, ok := n.literalChildren[seg.literal]
			if !ok {
				child = newNode()
				n.literalChildren[seg.literal] = child
			}
			n = child
		}
	}

	if n.route == nil {
		n.route = &Route{
			Pattern:    pattern,
			segments:   segs,
			paramNames: paramNames,
			handlers:   make(map[string]Handler),
			privileges: make(map[string]session.Expression),
		}
		rt.routes = append(rt.routes, n.route)
	} else if !equalNames(n.route.paramNames, paramNames) {
		return &AmbiguousRouteError{Pattern: pattern, Existing: n.route.Pattern}
	}
	if _, exists := n.route.handlers[method]; exists {
		return &DuplicateMethodError{Pattern: pattern, Method: method}
	}
	n.route.handlers[method] = h
	n.route.privileges[method] = required
	return nil
}

// SetSelfParam marks which route parameter identifies the resource owner
// for the ConfigureSelf privilege exception (e.g. "username" on an
// account's own resource). Must be called after the first Handle call for
// pattern.
func (rt *Router) SetSelfParam(pattern, paramName string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, r := range rt.routes {
		if r.Pattern == pattern {
			r.selfParam = paramName
			return
		}
	}
}

// SetUpgrade registers a protocol-upgrade hook for pattern, invoked
// instead of the normal method handler whenever the request carries an
// Upgrade/Connection header pair the hook accepts. Used for SSE/websocket
// style long-lived connections.
func (rt *Router) SetUpgrade(pattern string, fn UpgradeFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, r := range rt.routes {
		if r.Pattern == pattern {
			r.upgrade = fn
			return
		}
	}
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ArityError reports a paramNames/hole-count mismatch at registration.
type ArityError struct {
	Pattern string
	Holes   int
	Names   int
}

func (e *ArityError) Error() string {
	return "router: pattern " + e.Pattern + " declares " + strconv.Itoa(e.Holes) +
		" typed holes but " + strconv.Itoa(e.Names) + " parameter names were given"
}

// AmbiguousRouteError reports two registrations compiling to the same
// trie node with incompatible parameter naming.
type AmbiguousRouteError struct {
	Pattern  string
	Existing string
}

func (e *AmbiguousRouteError) Error() string {
	return "router: pattern " + e.Pattern + " conflicts with already-registered " + e.Existing
}

// DuplicateMethodError reports the same method registered twice for one
// pattern.
type DuplicateMethodError struct {
	Pattern string
	Method  string
}

func (e *DuplicateMethodError) Error() string {
	return "router: method " + e.Method + " already registered for pattern " + e.Pattern
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// match walks the trie for segs, returning the route and the bound
// parameter values in declaration order.
func (rt *Router) match(segs []string) (*Route, []string, bool) {
	return matchNode(rt.root, segs, nil)
}

func matchNode(n *node, segs []string, bound []string) (*Route, []string, bool) {
	if len(segs) == 0 {
		if n.route != nil {
			return n.route, bound, true
		}
		return nil, nil, false
	}
	head, rest := segs[0], segs[1:]

	if child, ok := n.literalChildren[head]; ok {
		if route, b, ok := matchNode(child, rest, bound); ok {
			return route, b, true
		}
	}
	// Typed holes, most specific first so "42" prefers <int> over <str>
	// when both are registered (kept deterministic even though in
	// practice a single pattern registers only one kind per position).
	for _, kind := range []ParamKind{KindUint, KindInt, KindDouble, KindString} {
		child, ok := n.paramChildren[kind]
		if !ok {
			continue
		}
		if !valueMatchesKind(head, kind) {
			continue
		}
		if route, b, ok := matchNode(child, rest, append(append([]string{}, bound...), head)); ok {
			return route, b, true
		}
	}
	if child, ok := n.paramChildren[KindPath]; ok {
		value := strings.Join(segs, "/")
		if route, b, ok := matchNode(child, nil, append(append([]string{}, bound...), value)); ok {
			return route, b, true
		}
	}
	return nil, nil, false
}

func valueMatchesKind(v string, kind ParamKind) bool {
	switch kind {
	case KindInt:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	case KindUint:
		_, err := strconv.ParseUint(v, 10, 64)
		return err == nil
	case KindDouble:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	case KindString:
		return v != ""
	default:
		return false
	}
}

// allowedMethods returns the sorted set of methods registered on route,
// including OPTIONS which every route answers implicitly.
func allowedMethods(route *Route) []string {
	methods := make([]string, 0, len(route.handlers)+1)
	for m := range route.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	methods = append(methods, http.MethodOptions)
	return methods
}

// ServeHTTP dispatches r, authorizing against sess (nil for anonymous
// callers) and writing the result to w. It implements spec.md's fixed
// precedence: not-found beats method-not-allowed beats privilege checks,
// so an unauthenticated probe against a nonexistent resource still gets
// 404 rather than leaking whether a protected resource exists.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	rt.mu.RLock()
	route, params, ok := rt.match(splitSegments(r.URL.Path))
	rt.mu.RUnlock()

	if !ok {
		resp := rhttp.NewResponse()
		resp.Fail(resp.Errors.NotFound("Resource", r.URL.Path))
		resp.WriteTo(w, r)
		return
	}

	if route.upgrade != nil && isUpgradeRequest(r) {
		paramMap := bindParams(route, params)
		route.upgrade(w, r, paramMap)
		return
	}

	if r.Method == http.MethodOptions {
		rhttp.WriteAllow(w, allowedMethods(route)...)
		return
	}

	handler, exists := route.handlers[r.Method]
	if !exists {
		resp := rhttp.NewResponse()
		resp.Header.Set("Allow", strings.Join(allowedMethods(route), ", "))
		resp.Fail(resp.Errors.MethodNotAllowed())
		resp.WriteTo(w, r)
		return
	}

	required := route.privileges[r.Method]
	if len(required) > 0 {
		if sess == nil {
			resp := rhttp.NewResponse()
			resp.Fail(resp.Errors.Unauthorized())
			resp.WriteTo(w, r)
			return
		}
		paramMap := bindParams(route, params)
		selfTarget := route.selfParam != "" && sess.Username == paramMap[route.selfParam]
		if !session.Authorize(sess, required, selfTarget) {
			resp := rhttp.NewResponse()
			resp.Fail(resp.Errors.InsufficientPrivilege())
			resp.WriteTo(w, r)
			return
		}
	}

	req := &rhttp.Request{
		Request: r,
		Params:  bindParams(route, params),
		Session: sess,
	}
	resp := rhttp.NewResponse()
	handler(req, resp)
	resp.WriteTo(w, r)
}

func bindParams(route *Route, values []string) map[string]string {
	out := make(map[string]string, len(values))
	for i, name := range route.paramNames {
		if i < len(values) {
			out[name] = values[i]
		}
	}
	return out
}

func isUpgradeRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Connection"), "Upgrade") && r.Header.Get("Upgrade") != ""
}

// Validate reports any structural problem across all registered routes:
// currently this confirms every route has at least one method handler,
// since a route reachable only via OPTIONS would be dead weight in the
// trie. Registration-time checks (arity, ambiguity, duplicate methods)
// already reject the rest by returning an error from Handle.
func (rt *Router) Validate() error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	for _, r := range rt.routes {
		if len(r.handlers) == 0 {
			return &EmptyRouteError{Pattern: r.Pattern}
		}
	}
	return nil
}

// EmptyRouteError reports a compiled route with no method handlers.
type EmptyRouteError struct {
	Pattern string
}

func (e *EmptyRouteError) Error() string {
	return "router: pattern " + e.Pattern + " has no registered methods"
}
