package course

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/signalk"
)

// Activator makes the route of a course the active route.
type Activator struct {
	server  Server
	catalog *catalog.Catalog
	day     string
	prefix  string
	logger  *slog.Logger
}

// NewActivator returns an activator for the courses of cat.
func NewActivator(server Server, cat *catalog.Catalog, s Settings) *Activator {
	s = s.withDefaults()
	return &Activator{server: server, catalog: cat, day: s.Day, prefix: s.RoutePrefix, logger: s.Logger}
}

// Activate finds the route named after the course and activates it.
func (a *Activator) Activate(ctx context.Context, c catalog.Course) error {
	routes, err := a.server.ListRoutes(ctx)
	if err != nil {
		return fmt.Errorf("list routes: %w", err)
	}
	for _, name := range RouteNameCandidates(a.day, a.prefix, c.Number) {
		r, ok := routes.ByName(name)
		if !ok {
			continue
		}
		if err := a.server.SetActiveRoute(ctx, r.ID); err != nil {
			return fmt.Errorf("activate route %s: %w", r.Name, err)
		}
		a.logger.Info("course activated", "course", c.Number, "route", r.ID, "name", r.Name)
		return nil
	}
	return fmt.Errorf("%w %s", ErrRouteNotFound, c.Number)
}

// SelectNumber activates a course given as a number, rejecting numbers
// that are malformed, unknown or not playable.
func (a *Activator) SelectNumber(ctx context.Context, number string) (catalog.Course, error) {
	if !catalog.ValidNumber(number) {
		return catalog.Course{}, fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	c, ok := a.catalog.Lookup(number)
	if !ok {
		return catalog.Course{}, fmt.Errorf("%w: %s", ErrUnknownCourse, number)
	}
	if !c.Playable() {
		return catalog.Course{}, fmt.Errorf("%w: %s", ErrNotPlayable, number)
	}
	return c, a.Activate(ctx, c)
}

// Status describes what the vessel is currently steering.
type Status struct {
	RouteID   string
	RouteName string
	// Number is set when the route name carries a course number.
	Number string
	// Course is set when Number is in the catalog.
	Course      *catalog.Course
	Destination string
	// DestinationName is the waypoint name, or its id when unnamed.
	DestinationName string
}

// HasRoute reports whether a route is active.
func (s Status) HasRoute() bool { return s.RouteID != "" }

// ActiveCourse reads the active route and destination and resolves them to
// a course and mark name.
func (a *Activator) ActiveCourse(ctx context.Context) (Status, error) {
	var (
		routeHref, destHref string
		routes              *signalk.RouteIndex
		waypoints           *signalk.WaypointIndex
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		routeHref, err = a.server.ActiveRoute(gctx)
		return err
	})
	eg.Go(func() (err error) {
		destHref, err = a.server.Destination(gctx)
		return err
	})
	eg.Go(func() (err error) {
		routes, err = a.server.ListRoutes(gctx)
		return err
	})
	eg.Go(func() (err error) {
		waypoints, err = a.server.ListWaypoints(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return Status{}, fmt.Errorf("read course state: %w", err)
	}

	var st Status
	if routeHref != "" {
		id, err := signalk.IDFromHref(routeHref)
		if err != nil {
			return Status{}, err
		}
		st.RouteID = id
		if r, ok := routes.Get(id); ok {
			st.RouteName = r.Name
		}
		if number, ok := ExtractCourseNumber(st.RouteName); ok {
			st.Number = number
			if c, ok := a.catalog.Lookup(number); ok {
				st.Course = &c
			}
		}
	}
	if destHref != "" {
		id, err := signalk.IDFromHref(destHref)
		if err != nil {
			return Status{}, err
		}
		st.Destination = id
		st.DestinationName = id
		if w, ok := waypoints.Get(id); ok && w.Name != "" {
			st.DestinationName = w.Name
		}
	}
	return st, nil
}
