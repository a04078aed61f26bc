// Package visibility keeps the active route the only visible route on the
// navigation server. Routes that are hidden are snapshotted first and put
// back when no route is active or the engine shuts down.
package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/brunoga/deep"

	"github.com/hycracing/courseselect/internal/signalk"
	"github.com/hycracing/courseselect/pkg/models"
)

// RouteStore is the part of the navigation server the engine needs.
type RouteStore interface {
	ListRoutes(ctx context.Context) (*signalk.RouteIndex, error)
	DeleteRoute(ctx context.Context, id string) error
	PutRoute(ctx context.Context, id string, r signalk.RouteRecord) error
}

// Options configures reconciliation.
type Options struct {
	Mode        models.VisibilityMode
	AutoRestore bool
	// ExcludeRoutes lists route ids (or hrefs) that are never hidden.
	ExcludeRoutes []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine hides inactive routes and restores them. All passes are
// serialized; the backup is only touched while mu is held.
type Engine struct {
	store       RouteStore
	mode        models.VisibilityMode
	autoRestore bool
	exclude     map[string]struct{}
	logger      *slog.Logger

	mu     sync.Mutex
	backup map[string]signalk.RouteRecord
	// lastRef is the reference of the previous pass, for log levels only.
	lastRef string

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an engine over store. An invalid or empty mode means hide.
func New(store RouteStore, opts Options, options ...Option) *Engine {
	mode := opts.Mode
	if !mode.IsValid() {
		mode = models.ModeHide
	}
	e := &Engine{
		store:       store,
		mode:        mode,
		autoRestore: opts.AutoRestore,
		exclude:     make(map[string]struct{}, len(opts.ExcludeRoutes)),
		logger:      slog.Default(),
		backup:      make(map[string]signalk.RouteRecord),
	}
	for _, ref := range opts.ExcludeRoutes {
		if id, err := signalk.IDFromHref(ref); err == nil {
			e.exclude[id] = struct{}{}
		}
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Mode returns the effective visibility mode.
func (e *Engine) Mode() models.VisibilityMode { return e.mode }

// @MX:ANCHOR: [AUTO] OnActiveRouteChanged is the single entry point of every reconciliation pass
// @MX:REASON: [AUTO] called by the feed loop, the watch command and tests; owns the backup invariants
// OnActiveRouteChanged reconciles the server with a new active route
// reference. An empty ref means no route is active: the backup is restored
// when auto-restore is on. Otherwise every route other than the active one
// and the excluded ones is snapshotted (once) and then hidden.
//
// Per-route failures do not stop the pass; they are returned together as a
// *PartialFailure.
func (e *Engine) OnActiveRouteChanged(ctx context.Context, ref string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ref = strings.TrimSpace(ref)
	changed := ref != e.lastRef
	e.lastRef = ref

	if ref == "" {
		if !e.autoRestore {
			e.logger.Debug("no active route, auto-restore disabled", "backed", len(e.backup))
			return nil
		}
		if len(e.backup) == 0 {
			return nil
		}
		e.logger.Info("no active route, restoring hidden routes", "backed", len(e.backup))
		return e.restoreLocked(ctx)
	}

	activeID, err := signalk.IDFromHref(ref)
	if err != nil {
		return err
	}
	if changed {
		e.logger.Info("active route changed", "route", activeID)
	} else {
		e.logger.Debug("reconciling active route", "route", activeID)
	}

	routes, err := e.store.ListRoutes(ctx)
	if err != nil {
		return fmt.Errorf("list routes: %w", err)
	}

	var failures []RouteFailure
	for _, r := range routes.All() {
		if r.ID == activeID {
			continue
		}
		if _, skip := e.exclude[r.ID]; skip {
			continue
		}

		if _, held := e.backup[r.ID]; !held {
			e.backup[r.ID] = deep.MustCopy(r)
			e.logger.Debug("backed up route", "route", r.ID, "name", r.Name)
		}
		if !e.mode.Removes() {
			continue
		}

		if err := e.store.DeleteRoute(ctx, r.ID); err != nil {
			e.logger.Warn("hide route failed", "route", r.ID, "name", r.Name, "error", err)
			failures = append(failures, RouteFailure{RouteID: r.ID, Err: err})
			continue
		}
		e.logger.Debug("hid route", "route", r.ID, "name", r.Name)
	}

	if len(failures) > 0 {
		return &PartialFailure{Op: "hide", Failures: failures}
	}
	return nil
}

// RestoreAll writes every snapshot back. Restored routes leave the backup;
// routes whose write failed stay for the next attempt.
func (e *Engine) RestoreAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restoreLocked(ctx)
}

func (e *Engine) restoreLocked(ctx context.Context) error {
	if len(e.backup) == 0 {
		return nil
	}

	ids := make([]string, 0, len(e.backup))
	for id := range e.backup {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var restored []string
	var failures []RouteFailure
	for _, id := range ids {
		snap := e.backup[id]
		if err := e.store.PutRoute(ctx, id, snap); err != nil {
			e.logger.Warn("restore route failed", "route", id, "name", snap.Name, "error", err)
			failures = append(failures, RouteFailure{RouteID: id, Err: err})
			continue
		}
		restored = append(restored, id)
		e.logger.Debug("restored route", "route", id, "name", snap.Name)
	}

	for _, id := range restored {
		delete(e.backup, id)
	}
	e.logger.Info("restore finished", "restored", len(restored), "failed", len(failures))

	if len(failures) > 0 {
		return &PartialFailure{Op: "restore", Failures: failures}
	}
	return nil
}

// Backed returns the ids currently held in the backup, sorted.
func (e *Engine) Backed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.backup))
	for id := range e.backup {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Start subscribes to feed and processes its changes one at a time until
// ctx ends or Shutdown is called.
func (e *Engine) Start(ctx context.Context, feed Feed) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.done != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	changes, err := feed.Subscribe(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to active route: %w", err)
	}
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(runCtx, changes, e.done)

	e.logger.Info("visibility engine started", "mode", e.mode, "auto_restore", e.autoRestore)
	return nil
}

func (e *Engine) run(ctx context.Context, changes <-chan Change, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := e.OnActiveRouteChanged(ctx, c.Href); err != nil && ctx.Err() == nil {
				e.logger.Warn("reconciliation failed", "href", c.Href, "error", err)
			}
		}
	}
}

// Shutdown stops the feed loop, waits for it, and restores every backed-up
// route. It may be called without Start.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.runMu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.runMu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err := e.RestoreAll(ctx)
	e.logger.Info("visibility engine stopped", "still_backed", len(e.Backed()))
	return err
}
