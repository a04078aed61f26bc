package signalk

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// nameKey normalises a resource name for the secondary index.
func nameKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// RouteIndex is a fetched route set keyed by id, with a name to id
// secondary index built once at construction.
type RouteIndex struct {
	byID   map[string]RouteRecord
	ids    []string
	byName map[string]string
}

// NewRouteIndex indexes routes by id and by name. When several routes
// share a name the lexicographically first id wins.
func NewRouteIndex(routes map[string]RouteRecord) *RouteIndex {
	idx := &RouteIndex{
		byID:   make(map[string]RouteRecord, len(routes)),
		byName: make(map[string]string, len(routes)),
	}
	for id, r := range routes {
		r.ID = id
		idx.byID[id] = r
		idx.ids = append(idx.ids, id)
	}
	slices.Sort(idx.ids)
	for _, id := range idx.ids {
		key := nameKey(idx.byID[id].Name)
		if key == "" {
			continue
		}
		if _, taken := idx.byName[key]; !taken {
			idx.byName[key] = id
		}
	}
	return idx
}

// Len returns the number of routes.
func (x *RouteIndex) Len() int { return len(x.ids) }

// IDs returns the route ids in sorted order.
func (x *RouteIndex) IDs() []string { return slices.Clone(x.ids) }

// Get returns the route with the given id.
func (x *RouteIndex) Get(id string) (RouteRecord, bool) {
	r, ok := x.byID[id]
	return r, ok
}

// ByName returns the route with the given name.
func (x *RouteIndex) ByName(name string) (RouteRecord, bool) {
	id, ok := x.byName[nameKey(name)]
	if !ok {
		return RouteRecord{}, false
	}
	return x.byID[id], true
}

// All returns the routes in id order.
func (x *RouteIndex) All() []RouteRecord {
	out := make([]RouteRecord, len(x.ids))
	for i, id := range x.ids {
		out[i] = x.byID[id]
	}
	return out
}

// WaypointIndex is a fetched waypoint set keyed by id and by name.
type WaypointIndex struct {
	byID   map[string]WaypointRecord
	ids    []string
	byName map[string]string
}

// NewWaypointIndex indexes waypoints by id and by name. When several
// waypoints share a name the lexicographically first id wins.
func NewWaypointIndex(waypoints map[string]WaypointRecord) *WaypointIndex {
	idx := &WaypointIndex{
		byID:   make(map[string]WaypointRecord, len(waypoints)),
		byName: make(map[string]string, len(waypoints)),
	}
	for id, w := range waypoints {
		w.ID = id
		idx.byID[id] = w
		idx.ids = append(idx.ids, id)
	}
	slices.Sort(idx.ids)
	for _, id := range idx.ids {
		key := nameKey(idx.byID[id].Name)
		if key == "" {
			continue
		}
		if _, taken := idx.byName[key]; !taken {
			idx.byName[key] = id
		}
	}
	return idx
}

// Len returns the number of waypoints.
func (x *WaypointIndex) Len() int { return len(x.ids) }

// IDs returns the waypoint ids in sorted order.
func (x *WaypointIndex) IDs() []string { return slices.Clone(x.ids) }

// Get returns the waypoint with the given id.
func (x *WaypointIndex) Get(id string) (WaypointRecord, bool) {
	w, ok := x.byID[id]
	return w, ok
}

// ByName returns the waypoint with the given name.
func (x *WaypointIndex) ByName(name string) (WaypointRecord, bool) {
	id, ok := x.byName[nameKey(name)]
	if !ok {
		return WaypointRecord{}, false
	}
	return x.byID[id], true
}

// Find returns the first waypoint, in id order, matching pred.
func (x *WaypointIndex) Find(pred func(WaypointRecord) bool) (WaypointRecord, bool) {
	for _, id := range x.ids {
		if w := x.byID[id]; pred(w) {
			return w, true
		}
	}
	return WaypointRecord{}, false
}

// Names returns name to id for every named waypoint.
func (x *WaypointIndex) Names() map[string]string {
	out := make(map[string]string, len(x.byName))
	for _, id := range x.byName {
		out[x.byID[id].Name] = id
	}
	return out
}

func decodeCollection[T any](data []byte) (map[string]T, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	out := make(map[string]T, len(members))
	for id, raw := range members {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode resource %s: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}
