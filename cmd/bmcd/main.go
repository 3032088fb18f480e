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

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bmcd/internal/account"
	"bmcd/internal/bmcapp"
	"bmcd/internal/eventbus"
	"bmcd/internal/handlers"
	"bmcd/internal/logging"
	"bmcd/internal/session"
	"bmcd/internal/store"
	"bmcd/internal/taskengine"
)

func main() {
	var (
		addr             = flag.String("addr", ":8080", "fallback HTTP listen address, used when no sockets are inherited from a supervisor")
		dbPath           = flag.String("db", "bmcd.db", "SQLite database path for session and subscription persistence")
		logLevel         = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		retainedTasks    = flag.Int("task-retention", 100, "maximum number of retained tasks; beyond it the oldest terminal task is evicted")
		sessionIdle      = flag.Duration("session-idle-timeout", 30*time.Minute, "idle session eviction timeout")
		sessionsPerUser  = flag.Int("max-sessions-per-user", 4, "maximum concurrent sessions per user before the oldest is evicted")
		heartbeat        = flag.Duration("heartbeat-interval", time.Minute, "interval between RedfishServiceFunctional heartbeat events (0 disables)")
		persistInterval  = flag.Duration("persist-interval", 30*time.Second, "interval between snapshot writes of live sessions/subscriptions to the database")
		adminPasswordEnv = "BMCD_ADMIN_PASSWORD"
	)
	flag.Parse()

	logger := logging.New(*logLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(*dbPath)
	if err != nil {
		slog.Error("bmcd: open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("bmcd: migrate database", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(*sessionIdle, *sessionsPerUser)
	restoreSessions(ctx, db, sessions)

	events := eventbus.New()
	restoreSubscriptions(ctx, db, events)
	events.StartHeartbeat(ctx, *heartbeat)

	tasks := taskengine.NewEngine(*retainedTasks, eventbus.TaskNotifier{Bus: events})

	accounts := account.NewStore()
	if err := createDefaultAdminAccount(accounts, adminPasswordEnv); err != nil {
		slog.Error("bmcd: create default admin account", "error", err)
		os.Exit(1)
	}

	app := bmcapp.New(sessions, tasks, events)
	reg := handlers.New(app, accounts)
	if err := reg.Register(); err != nil {
		slog.Error("bmcd: register routes", "error", err)
		os.Exit(1)
	}
	if err := app.Validate(); err != nil {
		slog.Error("bmcd: validate routes", "error", err)
		os.Exit(1)
	}

	go persistPeriodically(ctx, db, sessions, events, *persistInterval)

	slog.Info("bmcd: starting")
	if err := app.Run(ctx, *addr); err != nil {
		slog.Error("bmcd: server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bmcd: stopped")
}

// restoreSessions re-hydrates the in-memory session store from the
// database's last snapshot, so a restart doesn't invalidate every
// logged-in client's token immediately.
func restoreSessions(ctx context.Context, db *store.DB, sessions *session.Store) {
	recs, err := db.LoadSessions(ctx)
	if err != nil {
		slog.Warn("bmcd: load persisted sessions", "error", err)
		return
	}
	for _, rec := range recs {
		if _, err := sessions.Restore(rec.ID, rec.Username, rec.RoleName, rec.ClientOrigin, rec.CreatedAt, rec.LastAccess); err != nil {
			slog.Warn("bmcd: discarding unrestorable session record", "id", rec.ID, "error", err)
		}
	}
}

// restoreSubscriptions re-hydrates event subscriptions, re-attaching an
// HTTPSink to each since the SSE sinks a prior process may have held die
// with that process's connections.
func restoreSubscriptions(ctx context.Context, db *store.DB, bus *eventbus.Bus) {
	recs, err := db.LoadSubscriptions(ctx)
	if err != nil {
		slog.Warn("bmcd: load persisted subscriptions", "error", err)
		return
	}
	for _, rec := range recs {
		sub := &eventbus.Subscription{
			ID:               rec.ID,
			Destination:      rec.Destination,
			Protocol:         rec.Protocol,
			Context:          rec.Context,
			RegistryPrefixes: rec.RegistryPrefixes,
			MessageKeys:      rec.MessageKeys,
			Headers:          rec.Headers,
		}
		bus.Subscribe(sub, eventbus.NewHTTPSink(rec.Destination, rec.Headers))
	}
}

// persistPeriodically snapshots every live session and subscription to
// the database on a fixed interval until ctx is cancelled, at which
// point it writes one final snapshot before returning. This is a coarser
// durability model than SPEC_FULL.md's per-write persistence sketch, but
// it keeps internal/session and internal/eventbus free of a direct
// database dependency.
func persistPeriodically(ctx context.Context, db *store.DB, sessions *session.Store, bus *eventbus.Bus, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			snapshotNow(context.Background(), db, sessions, bus)
			return
		case <-ticker.C:
			snapshotNow(ctx, db, sessions, bus)
		}
	}
}

func snapshotNow(ctx context.Context, db *store.DB, sessions *session.Store, bus *eventbus.Bus) {
	for _, rec := range sessions.Export() {
		if err := db.SaveSession(ctx, store.SessionRecord{
			ID:           rec.ID,
			Username:     rec.Username,
			RoleName:     rec.RoleName,
			ClientOrigin: rec.ClientOrigin,
			CreatedAt:    rec.CreatedAt.Unix(),
			LastAccess:   rec.LastAccess.Unix(),
		}); err != nil {
			slog.Warn("bmcd: persist session", "id", rec.ID, "error", err)
		}
	}
	for _, sub := range bus.List() {
		if err := db.SaveSubscription(ctx, store.SubscriptionRecord{
			ID:               sub.ID,
			Destination:      sub.Destination,
			Protocol:         sub.Protocol,
			Context:          sub.Context,
			RegistryPrefixes: sub.RegistryPrefixes,
			MessageKeys:      sub.MessageKeys,
			Headers:          sub.Headers,
		}); err != nil {
			slog.Warn("bmcd: persist subscription", "id", sub.ID, "error", err)
		}
	}
}

// createDefaultAdminAccount seeds a single Administrator account on a
// fresh deployment, mirroring cmd/shoal/main.go's createDefaultAdminUser:
// a fixed "admin" username, password from the environment if set, with a
// loud warning when falling back to the default.
func createDefaultAdminAccount(accounts *account.Store, passwordEnv string) error {
	password := os.Getenv(passwordEnv)
	usedDefault := password == ""
	if usedDefault {
		password = "admin"
	}
	if err := accounts.Create("admin", password, "Administrator"); err != nil {
		return err
	}
	slog.Info("bmcd: created default admin account", "username", "admin")
	if usedDefault {
		slog.Warn("bmcd: using default admin password, set " + passwordEnv + " to override")
	}
	return nil
}
