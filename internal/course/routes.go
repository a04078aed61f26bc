package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/signalk"
)

// createLimit bounds concurrent route writes.
const createLimit = 4

// RouteBuilder creates, renames and verifies the course routes.
type RouteBuilder struct {
	server Server
	prefix string
	logger *slog.Logger
}

// NewRouteBuilder returns a route builder.
func NewRouteBuilder(server Server, s Settings) *RouteBuilder {
	s = s.withDefaults()
	return &RouteBuilder{server: server, prefix: s.RoutePrefix, logger: s.Logger}
}

// Progress is told about each finished course.
type Progress func(done, total int, number string)

// CreatedRoute is a route written by CreateAll.
type CreatedRoute struct {
	Number  string
	RouteID string
	Name    string
}

// CreateReport is the outcome of CreateAll.
type CreateReport struct {
	Created []CreatedRoute
	// Existing lists courses whose route already exists.
	Existing []string
	// Failed maps course numbers to the reason no route was written.
	Failed map[string]error
}

// Err joins the per-course failures.
func (r CreateReport) Err() error {
	numbers := slices.Sorted(maps.Keys(r.Failed))
	errs := make([]error, 0, len(numbers))
	for _, n := range numbers {
		errs = append(errs, fmt.Errorf("course %s: %w", n, r.Failed[n]))
	}
	return errors.Join(errs...)
}

// CreateAll writes a route for every playable course that has none yet.
// The first waypoint, the start line, is not part of the route.
func (b *RouteBuilder) CreateAll(ctx context.Context, courses []catalog.Course, progress Progress) (CreateReport, error) {
	routes, waypoints, err := b.fetch(ctx)
	if err != nil {
		return CreateReport{}, err
	}

	var todo []catalog.Course
	report := CreateReport{Failed: map[string]error{}}
	for _, c := range courses {
		if !c.Playable() {
			continue
		}
		if _, ok := routes.ByName(RouteName(b.prefix, c.Number)); ok {
			report.Existing = append(report.Existing, c.Number)
			continue
		}
		todo = append(todo, c)
	}

	var (
		mu   sync.Mutex
		done int
		eg   errgroup.Group
	)
	eg.SetLimit(createLimit)
	for _, c := range todo {
		eg.Go(func() error {
			created, err := b.create(ctx, c, waypoints)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				b.logger.Warn("route not created", "course", c.Number, "error", err)
				report.Failed[c.Number] = err
			} else {
				report.Created = append(report.Created, created)
			}
			if progress != nil {
				progress(done, len(todo), c.Number)
			}
			return nil
		})
	}
	_ = eg.Wait()

	slices.SortFunc(report.Created, func(x, y CreatedRoute) int {
		return strings.Compare(x.Number, y.Number)
	})
	b.logger.Info("routes created", "created", len(report.Created), "existing", len(report.Existing), "failed", len(report.Failed))
	return report, nil
}

func (b *RouteBuilder) create(ctx context.Context, c catalog.Course, waypoints *signalk.WaypointIndex) (CreatedRoute, error) {
	marks := c.MarkNames()
	if len(marks) < 2 {
		return CreatedRoute{}, errors.New("no marks after the start")
	}
	marks = marks[1:]

	ids := make([]string, 0, len(marks))
	line := make(orb.LineString, 0, len(marks))
	for _, name := range marks {
		w, ok := waypoints.ByName(name)
		if !ok {
			return CreatedRoute{}, fmt.Errorf("%w: %s", ErrMarkNotFound, name)
		}
		pos, ok := w.Location()
		if !ok {
			return CreatedRoute{}, fmt.Errorf("mark %s has no position", name)
		}
		ids = append(ids, w.ID)
		line = append(line, pos.Point())
	}

	name := RouteName(b.prefix, c.Number)
	rec, err := signalk.NewRouteRecord(name, "Course "+c.Number, ids, line)
	if err != nil {
		return CreatedRoute{}, err
	}
	id := signalk.NewResourceID()
	if err := b.server.PutRoute(ctx, id, rec); err != nil {
		return CreatedRoute{}, err
	}
	return CreatedRoute{Number: c.Number, RouteID: id, Name: name}, nil
}

// RenameNumeric renames every route named with a bare course number to
// the prefixed form. Other fields of the routes are kept as the server
// sent them. It returns the ids of the renamed routes.
func (b *RouteBuilder) RenameNumeric(ctx context.Context) ([]string, error) {
	routes, err := b.server.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	var renamed []string
	var errs []error
	for _, r := range routes.All() {
		if !catalog.ValidNumber(r.Name) {
			continue
		}
		rec, err := r.WithName(RouteName(b.prefix, r.Name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := b.server.PutRoute(ctx, r.ID, rec); err != nil {
			errs = append(errs, fmt.Errorf("rename route %s: %w", r.ID, err))
			continue
		}
		b.logger.Info("route renamed", "route", r.ID, "from", r.Name, "to", rec.Name)
		renamed = append(renamed, r.ID)
	}
	return renamed, errors.Join(errs...)
}

// Mismatch is a course route whose marks differ from the catalog.
type Mismatch struct {
	Number  string
	RouteID string
	Want    []string
	Got     []string
}

// VerifyReport is the outcome of Verify.
type VerifyReport struct {
	Matched    []string
	Mismatched []Mismatch
	Missing    []string
}

// OK reports whether every course has a matching route.
func (r VerifyReport) OK() bool {
	return len(r.Mismatched) == 0 && len(r.Missing) == 0
}

// Verify compares the course routes on the server against the catalog.
// A route may or may not include the start waypoint.
func (b *RouteBuilder) Verify(ctx context.Context, cat *catalog.Catalog) (VerifyReport, error) {
	routes, waypoints, err := b.fetch(ctx)
	if err != nil {
		return VerifyReport{}, err
	}

	var report VerifyReport
	for _, c := range cat.Playable() {
		r, ok := routes.ByName(RouteName(b.prefix, c.Number))
		if !ok {
			report.Missing = append(report.Missing, c.Number)
			continue
		}

		got := make([]string, 0, len(r.Hrefs()))
		for _, href := range r.Hrefs() {
			name := href
			if id, err := signalk.IDFromHref(href); err == nil {
				name = "?" + id
				if w, ok := waypoints.Get(id); ok {
					name = w.Name
				}
			}
			got = append(got, name)
		}

		all := c.MarkNames()
		want := all[1:]
		if slices.Equal(got, want) || slices.Equal(got, all) {
			report.Matched = append(report.Matched, c.Number)
			continue
		}
		report.Mismatched = append(report.Mismatched, Mismatch{Number: c.Number, RouteID: r.ID, Want: want, Got: got})
	}
	return report, nil
}

// fetch loads the route and waypoint lists concurrently.
func (b *RouteBuilder) fetch(ctx context.Context) (*signalk.RouteIndex, *signalk.WaypointIndex, error) {
	var (
		routes    *signalk.RouteIndex
		waypoints *signalk.WaypointIndex
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		routes, err = b.server.ListRoutes(gctx)
		return err
	})
	eg.Go(func() (err error) {
		waypoints, err = b.server.ListWaypoints(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, fmt.Errorf("fetch routes and waypoints: %w", err)
	}
	return routes, waypoints, nil
}
