package signalk

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	routesHrefPrefix    = "/resources/routes/"
	waypointsHrefPrefix = "/resources/waypoints/"
)

// RouteHref returns the course-API reference to a route.
func RouteHref(id string) string { return routesHrefPrefix + id }

// WaypointHref returns the course-API reference to a waypoint.
func WaypointHref(id string) string { return waypointsHrefPrefix + id }

// IDFromHref returns the last path segment of a resource reference.
func IDFromHref(href string) (string, error) {
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	i := strings.LastIndexByte(href, '/')
	id := href[i+1:]
	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHref, href)
	}
	return id, nil
}

// NewResourceID returns a random version 4 UUID for a new resource.
func NewResourceID() string {
	return uuid.NewString()
}

// PointRef is one entry of a route's point list.
type PointRef struct {
	Href string `json:"href"`
	Type string `json:"type,omitempty"`
}

// RouteRecord is a route resource. Raw holds the JSON the server sent so
// the record can be written back unchanged.
type RouteRecord struct {
	ID          string          `json:"-"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Points      []PointRef      `json:"points,omitempty"`
	Feature     json.RawMessage `json:"feature,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the original bytes.
func (r *RouteRecord) UnmarshalJSON(data []byte) error {
	type plain RouteRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.ID = r.ID
	p.Raw = slices.Clone(json.RawMessage(data))
	*r = RouteRecord(p)
	return nil
}

// MarshalJSON emits the original bytes when the record came from the server.
func (r RouteRecord) MarshalJSON() ([]byte, error) {
	return r.Body()
}

// Body returns the request body for writing the record: the raw server
// bytes when present, otherwise the encoded known fields.
func (r RouteRecord) Body() ([]byte, error) {
	if len(r.Raw) > 0 {
		return slices.Clone(r.Raw), nil
	}
	type plain RouteRecord
	return json.Marshal(plain(r))
}

// Hrefs returns the waypoint references of the route in order. Routes that
// carry them in feature.properties.coordinatesMeta are read from there
// when the point list is empty.
func (r RouteRecord) Hrefs() []string {
	if len(r.Points) > 0 {
		out := make([]string, len(r.Points))
		for i, p := range r.Points {
			out[i] = p.Href
		}
		return out
	}
	if len(r.Feature) == 0 {
		return nil
	}
	var f struct {
		Properties struct {
			CoordinatesMeta []PointRef `json:"coordinatesMeta"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(r.Feature, &f); err != nil {
		return nil
	}
	var out []string
	for _, m := range f.Properties.CoordinatesMeta {
		if m.Href != "" {
			out = append(out, m.Href)
		}
	}
	return out
}

// Geometry decodes the route line.
func (r RouteRecord) Geometry() (orb.LineString, error) {
	if len(r.Feature) == 0 {
		return nil, nil
	}
	f, err := geojson.UnmarshalFeature(r.Feature)
	if err != nil {
		return nil, fmt.Errorf("decode route %s feature: %w", r.ID, err)
	}
	line, ok := f.Geometry.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("route %s geometry is %s, want LineString", r.ID, f.Geometry.GeoJSONType())
	}
	return line, nil
}

// WithName returns a copy of the record renamed, keeping every other field
// of the raw server representation.
func (r RouteRecord) WithName(name string) (RouteRecord, error) {
	out := r
	out.Name = name
	if len(r.Raw) == 0 {
		return out, nil
	}
	raw, err := patchRaw(r.Raw, "name", name)
	if err != nil {
		return RouteRecord{}, fmt.Errorf("rename route %s: %w", r.ID, err)
	}
	out.Raw = raw
	return out, nil
}

// NewRouteRecord builds a route from waypoint ids and their positions.
func NewRouteRecord(name, description string, waypointIDs []string, line orb.LineString) (RouteRecord, error) {
	if len(waypointIDs) != len(line) {
		return RouteRecord{}, fmt.Errorf("route %q: %d waypoints for %d coordinates", name, len(waypointIDs), len(line))
	}
	feature := geojson.NewFeature(line)
	feature.Properties = geojson.Properties{}
	encoded, err := feature.MarshalJSON()
	if err != nil {
		return RouteRecord{}, fmt.Errorf("encode route %q feature: %w", name, err)
	}
	points := make([]PointRef, len(waypointIDs))
	for i, id := range waypointIDs {
		points[i] = PointRef{Href: WaypointHref(id), Type: "waypoint"}
	}
	return RouteRecord{
		Name:        name,
		Description: description,
		Points:      points,
		Feature:     encoded,
	}, nil
}

// Position is a latitude/longitude pair in decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the position as lon/lat.
func (p Position) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// looseLatLon accepts both latitude/longitude and lat/lon spellings.
type looseLatLon struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

func (l looseLatLon) position() (Position, bool) {
	lat, lon := l.Latitude, l.Longitude
	if lat == nil {
		lat = l.Lat
	}
	if lon == nil {
		lon = l.Lon
	}
	if lat == nil || lon == nil {
		return Position{}, false
	}
	return Position{Latitude: *lat, Longitude: *lon}, true
}

// WaypointRecord is a waypoint resource. Raw holds the server bytes.
type WaypointRecord struct {
	ID          string          `json:"-"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Feature     json.RawMessage `json:"feature,omitempty"`
	Raw         json.RawMessage `json:"-"`

	location *Position
}

// UnmarshalJSON decodes the known fields, resolves the location from any
// of the layouts servers use, and keeps the original bytes.
func (w *WaypointRecord) UnmarshalJSON(data []byte) error {
	var p struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Feature     json.RawMessage `json:"feature"`
		Position    *looseLatLon    `json:"position"`
		looseLatLon
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	w.Name = p.Name
	w.Description = p.Description
	w.Feature = p.Feature
	w.Raw = slices.Clone(json.RawMessage(data))
	w.location = nil

	if pos, ok := featurePoint(p.Feature); ok {
		w.location = &pos
	} else if p.Position != nil {
		if pos, ok := p.Position.position(); ok {
			w.location = &pos
		}
	} else if pos, ok := p.looseLatLon.position(); ok {
		w.location = &pos
	}
	return nil
}

// Body returns the request body for writing the waypoint.
func (w WaypointRecord) Body() ([]byte, error) {
	if len(w.Raw) > 0 {
		return slices.Clone(w.Raw), nil
	}
	fields := map[string]any{"name": w.Name}
	if w.Description != "" {
		fields["description"] = w.Description
	}
	if len(w.Feature) > 0 {
		fields["feature"] = w.Feature
	}
	if w.location != nil {
		fields["position"] = *w.location
	}
	return json.Marshal(fields)
}

// Location returns the waypoint position, if it has one.
func (w WaypointRecord) Location() (Position, bool) {
	if w.location == nil {
		return Position{}, false
	}
	return *w.location, true
}

// WithPosition returns a copy moved to p. The position field and, when
// present, the feature geometry are both updated.
func (w WaypointRecord) WithPosition(p Position) (WaypointRecord, error) {
	out := w
	out.location = &p

	if len(w.Feature) > 0 {
		f, err := geojson.UnmarshalFeature(w.Feature)
		if err != nil {
			return WaypointRecord{}, fmt.Errorf("decode waypoint %s feature: %w", w.ID, err)
		}
		f.Geometry = p.Point()
		encoded, err := f.MarshalJSON()
		if err != nil {
			return WaypointRecord{}, fmt.Errorf("encode waypoint %s feature: %w", w.ID, err)
		}
		out.Feature = encoded
	}

	if len(w.Raw) == 0 {
		return out, nil
	}
	raw, err := patchRaw(w.Raw, "position", p)
	if err != nil {
		return WaypointRecord{}, fmt.Errorf("move waypoint %s: %w", w.ID, err)
	}
	if len(out.Feature) > 0 {
		if raw, err = patchRaw(raw, "feature", out.Feature); err != nil {
			return WaypointRecord{}, fmt.Errorf("move waypoint %s: %w", w.ID, err)
		}
	}
	out.Raw = raw
	return out, nil
}

func featurePoint(raw json.RawMessage) (Position, bool) {
	if len(raw) == 0 {
		return Position{}, false
	}
	f, err := geojson.UnmarshalFeature(raw)
	if err != nil || f.Geometry == nil {
		return Position{}, false
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return Position{}, false
	}
	return Position{Latitude: pt.Lat(), Longitude: pt.Lon()}, true
}

// patchRaw replaces one top-level member of a JSON object.
func patchRaw(raw json.RawMessage, key string, value any) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	fields[key] = encoded
	return json.Marshal(fields)
}
