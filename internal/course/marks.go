package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hycracing/courseselect/internal/signalk"
)

// MarkSelector steers to single marks.
type MarkSelector struct {
	server Server
	logger *slog.Logger
}

// NewMarkSelector returns a mark selector.
func NewMarkSelector(server Server, s Settings) *MarkSelector {
	s = s.withDefaults()
	return &MarkSelector{server: server, logger: s.Logger}
}

// Select sets the waypoint named name as the destination.
func (m *MarkSelector) Select(ctx context.Context, name string) error {
	id, err := m.server.ResolveWaypoint(ctx, name)
	if err != nil {
		if errors.Is(err, signalk.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrMarkNotFound, name)
		}
		return fmt.Errorf("resolve mark %s: %w", name, err)
	}
	if err := m.server.SetDestination(ctx, id); err != nil {
		return fmt.Errorf("set destination %s: %w", name, err)
	}
	m.logger.Info("destination set", "mark", name, "waypoint", id)
	return nil
}

// Clear drops the destination and the active route.
func (m *MarkSelector) Clear(ctx context.Context) error {
	if err := m.server.ClearCourse(ctx); err != nil {
		return fmt.Errorf("clear course: %w", err)
	}
	m.logger.Info("course cleared")
	return nil
}

// Current returns the name of the destination waypoint, or "" when none is
// set.
func (m *MarkSelector) Current(ctx context.Context) (string, error) {
	href, err := m.server.Destination(ctx)
	if err != nil || href == "" {
		return "", err
	}
	id, err := signalk.IDFromHref(href)
	if err != nil {
		return "", err
	}
	waypoints, err := m.server.ListWaypoints(ctx)
	if err != nil {
		return "", err
	}
	if w, ok := waypoints.Get(id); ok && w.Name != "" {
		return w.Name, nil
	}
	return id, nil
}

// IsFinish reports whether w is the finish mark.
func IsFinish(w signalk.WaypointRecord) bool {
	return strings.TrimSpace(w.Name) == FinishMarkName ||
		strings.EqualFold(strings.TrimSpace(w.Description), FinishMarkDescription)
}

// MoveFinish moves the finish mark to the vessel position and returns the
// updated waypoint.
func (m *MarkSelector) MoveFinish(ctx context.Context) (signalk.WaypointRecord, error) {
	var (
		pos       signalk.Position
		waypoints *signalk.WaypointIndex
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		pos, err = m.server.Position(gctx)
		return err
	})
	eg.Go(func() (err error) {
		waypoints, err = m.server.ListWaypoints(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return signalk.WaypointRecord{}, fmt.Errorf("move finish: %w", err)
	}

	finish, ok := waypoints.ByName(FinishMarkName)
	if !ok {
		finish, ok = waypoints.Find(IsFinish)
	}
	if !ok {
		return signalk.WaypointRecord{}, ErrFinishNotFound
	}

	moved, err := finish.WithPosition(pos)
	if err != nil {
		return signalk.WaypointRecord{}, err
	}
	if err := m.server.PutWaypoint(ctx, finish.ID, moved); err != nil {
		return signalk.WaypointRecord{}, fmt.Errorf("move finish: %w", err)
	}
	m.logger.Info("finish moved", "waypoint", finish.ID, "lat", pos.Latitude, "lon", pos.Longitude)
	return moved, nil
}
