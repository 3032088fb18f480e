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
	"net/http"

	"bmcd/internal/router"
	"bmcd/internal/session"
)

// RouteBuilder installs verb/privilege/handler triples against one
// compiled URL template, implementing spec.md §4.9's `route<T>(template)`
// builder surface: routes may be declared at any time before Validate.
type RouteBuilder struct {
	app        *App
	pattern    string
	paramNames []string
	err        error
}

// Route begins registering pattern, which must name exactly as many
// parameters as it has typed holes.
func (a *App) Route(pattern string, paramNames ...string) *RouteBuilder {
	return &RouteBuilder{app: a, pattern: pattern, paramNames: paramNames}
}

func (b *RouteBuilder) handle(method string, required session.Expression, h router.Handler) *RouteBuilder {
	if b.err != nil {
		return b
	}
	if err := b.app.Router.Handle(b.pattern, method, required, b.paramNames, h); err != nil {
		b.err = err
	}
	return b
}

// Get registers a GET handler.
func (b *RouteBuilder) Get(required session.Expression, h router.Handler) *RouteBuilder {
	return b.handle(http.MethodGet, required, h)
}

// Head registers a HEAD handler.
func (b *RouteBuilder) Head(required session.Expression, h router.Handler) *RouteBuilder {
	return b.handle(http.MethodHead, required, h)
}

// Post registers a POST handler.
func (b *RouteBuilder) Post(required session.Expression, h router.Handler) *RouteBuilder {
	return b.handle(http.MethodPost, required, h)
}

// Put registers a PUT handler.
func (b *RouteBuilder) Put(required session.Expression, h router.Handler) *RouteBuilder {
	return b.handle(http.MethodPut, required, h)
}

// Patch registers a PATCH handler.
func (b *RouteBuilder) Patch(required session.Expression, h router.Handler) *RouteBuilder {
	return b.handle(http.MethodPatch, required, h)
}

// Delete registers a DELETE handler.
func (b *RouteBuilder) Delete(required session.Expression, h router.Handler) *RouteBuilder {
	return b.handle(http.MethodDelete, required, h)
}

// SelfParam marks which of this route's parameters identifies the
// resource owner for the ConfigureSelf exception (spec.md §4.3 step 4).
func (b *RouteBuilder) SelfParam(name string) *RouteBuilder {
	if b.err == nil {
		b.app.Router.SetSelfParam(b.pattern, name)
	}
	return b
}

// Upgrade registers a protocol-upgrade hook for this route (SSE today;
// see internal/eventbus.SSESink).
func (b *RouteBuilder) Upgrade(fn router.UpgradeFunc) *RouteBuilder {
	if b.err == nil {
		b.app.Router.SetUpgrade(b.pattern, fn)
	}
	return b
}

// Err returns any registration error accumulated across this builder's
// calls — arity mismatches, ambiguous templates, or duplicate methods —
// deferred to a single check rather than forcing every call site to
// handle four separate error returns.
func (b *RouteBuilder) Err() error {
	return b.err
}
