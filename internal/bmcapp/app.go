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

// Package bmcapp implements the application facade (§4.9): it binds the
// sockets inherited from the supervisor, owns the router, and drives the
// HTTP server until shutdown. Grounded on cmd/shoal/main.go's server
// construction and graceful-shutdown style and on original_source's
// setupSocket() for the supervisor-socket contract (see listeners.go).
package bmcapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bmcd/internal/eventbus"
	"bmcd/internal/router"
	"bmcd/internal/session"
	"bmcd/internal/taskengine"
)

// App binds the router, session store, task engine, and event bus into
// one servable process, the way cmd/shoal/main.go binds the aggregator's
// *http.Server around internal/api and internal/web.
type App struct {
	Router   *router.Router
	Sessions *session.Store
	Tasks    *taskengine.Engine
	Events   *eventbus.Bus
	Metrics  *prometheus.Registry

	mux *http.ServeMux

	mu      sync.Mutex
	servers []*http.Server
}

// New builds an App with fresh router/session/task/event state and its
// own Prometheus registry so /metrics reflects only this process's
// collectors rather than the global default registry.
func New(sessions *session.Store, tasks *taskengine.Engine, events *eventbus.Bus) *App {
	reg := prometheus.NewRegistry()
	taskengine.RegisterMetrics(reg)

	a := &App{
		Router:   router.New(),
		Sessions: sessions,
		Tasks:    tasks,
		Events:   events,
		Metrics:  reg,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", a.serveRedfish)
	a.mux = mux
	return a
}

// serveRedfish resolves the caller's session from the X-Auth-Token
// header (spec.md §4.3: "Sessions are the only authenticated
// principal") before handing the request to the router, matching
// internal/auth.FromRequest's token-lookup precedence.
func (a *App) serveRedfish(w http.ResponseWriter, r *http.Request) {
	var sess *session.Session
	if token := r.Header.Get("X-Auth-Token"); token != "" {
		if s, ok := a.Sessions.Get(token); ok {
			sess = s
		}
	}
	a.Router.ServeHTTP(w, r, sess)
}

// Validate finalizes the router, rejecting empty routes; callers must
// call it once after every route registration and before Run.
func (a *App) Validate() error {
	return a.Router.Validate()
}

// Run binds every inherited listener (falling back to a single plain
// TCP listener on fallbackAddr when no sockets were inherited — the
// common case outside a supervised deployment, e.g. local development)
// and serves until ctx is cancelled, then shuts down every server with a
// bounded grace period.
func (a *App) Run(ctx context.Context, fallbackAddr string) error {
	listeners, err := InheritedListeners()
	if err != nil {
		return fmt.Errorf("bmcapp: inherit listeners: %w", err)
	}
	if len(listeners) == 0 {
		l, err := net.Listen("tcp", fallbackAddr)
		if err != nil {
			return fmt.Errorf("bmcapp: listen on %s: %w", fallbackAddr, err)
		}
		listeners = []NamedListener{{Name: "fallback_both", Listener: l, Mode: ModeBoth}}
	}

	errCh := make(chan error, len(listeners))
	for _, nl := range listeners {
		srv := &http.Server{
			Handler:      a.mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		a.mu.Lock()
		a.servers = append(a.servers, srv)
		a.mu.Unlock()

		slog.Info("bmcapp: listening", "name", nl.Name, "addr", nl.Listener.Addr().String(), "mode", modeLabel(nl.Mode))
		go func(srv *http.Server, l net.Listener) {
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
				return
			}
			errCh <- nil
		}(srv, nl.Listener)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.shutdown()
			return err
		}
	}

	a.shutdown()
	for range listeners {
		<-errCh
	}
	return nil
}

func (a *App) shutdown() {
	a.mu.Lock()
	servers := a.servers
	a.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("bmcapp: server forced to shutdown", "error", err)
		}
	}
}

func modeLabel(m SocketMode) string {
	switch m {
	case ModeHTTP:
		return "http"
	case ModeBoth:
		return "both"
	default:
		return "https"
	}
}
