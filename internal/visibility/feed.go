package visibility

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hycracing/courseselect/internal/signalk"
)

// Change is a new active route reference. Href is empty when no route is
// active.
type Change struct {
	Href string
}

// Feed delivers active route changes until ctx ends.
type Feed interface {
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// Streamer is the delta stream of the navigation server.
type Streamer interface {
	Stream(ctx context.Context, subs []signalk.Subscription) (<-chan signalk.PathValue, error)
}

// Active route paths. Servers speaking the v2 course API publish the
// object form; older servers publish the bare href.
const (
	PathActiveRoute     = "navigation.course.activeRoute"
	PathActiveRouteHref = "navigation.courseGreatCircle.activeRoute.href"
)

// SignalKFeed turns the delta stream into active route changes. Every
// periodic push is emitted, unchanged values included, so a failed pass is
// retried on the next period. The first path to deliver a value becomes the
// source and the other path is ignored from then on.
type SignalKFeed struct {
	streamer Streamer
	period   time.Duration
	logger   *slog.Logger
}

// NewSignalKFeed returns a feed that asks for updates every period.
func NewSignalKFeed(s Streamer, period time.Duration, logger *slog.Logger) *SignalKFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalKFeed{streamer: s, period: period, logger: logger}
}

// Subscribe implements Feed.
func (f *SignalKFeed) Subscribe(ctx context.Context) (<-chan Change, error) {
	ms := int(f.period / time.Millisecond)
	values, err := f.streamer.Stream(ctx, []signalk.Subscription{
		{Path: PathActiveRoute, Period: ms},
		{Path: PathActiveRouteHref, Period: ms},
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Change, 4)
	go func() {
		defer close(out)
		var source string
		for v := range values {
			if v.Path != PathActiveRoute && v.Path != PathActiveRouteHref {
				continue
			}
			if source != "" && v.Path != source {
				continue
			}
			href, err := decodeActiveRoute(v.Value)
			if err != nil {
				f.logger.Debug("ignoring active route value", "path", v.Path, "error", err)
				continue
			}
			if source == "" {
				source = v.Path
				f.logger.Debug("active route source", "path", source)
			}
			select {
			case out <- Change{Href: href}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// decodeActiveRoute accepts null, a bare href string, or {"href": ...}.
func decodeActiveRoute(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{':
		var v struct {
			Href *string `json:"href"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", err
		}
		if v.Href == nil {
			return "", nil
		}
		return *v.Href, nil
	}
	return "", fmt.Errorf("unexpected active route value %s", raw)
}
