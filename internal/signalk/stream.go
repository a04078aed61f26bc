package signalk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hycracing/courseselect/internal/resilience"
)

// SelfContext is the delta context of the local vessel.
const SelfContext = "vessels.self"

// Subscription asks the server to push one path.
type Subscription struct {
	Path string `json:"path"`
	// Period is the push interval in milliseconds.
	Period int `json:"period,omitempty"`
}

// PathValue is one value pushed by the stream.
type PathValue struct {
	Context string
	Path    string
	Value   json.RawMessage
}

type subscribeMessage struct {
	Context   string         `json:"context"`
	Subscribe []Subscription `json:"subscribe"`
}

type deltaMessage struct {
	Context string `json:"context"`
	Updates []struct {
		Values []struct {
			Path  string          `json:"path"`
			Value json.RawMessage `json:"value"`
		} `json:"values"`
	} `json:"updates"`
}

var errNoSubscriptions = errors.New("signalk: stream needs at least one subscription")

// Stream subscribes to paths of the local vessel. Values are delivered on
// the returned channel until ctx ends, when the channel is closed. Lost
// connections are re-established with exponential backoff.
func (c *Client) Stream(ctx context.Context, subs []Subscription) (<-chan PathValue, error) {
	if len(subs) == 0 {
		return nil, errNoSubscriptions
	}
	out := make(chan PathValue, 16)
	go c.runStream(ctx, subs, out)
	return out, nil
}

func (c *Client) runStream(ctx context.Context, subs []Subscription, out chan<- PathValue) {
	defer close(out)

	backoff := &resilience.Backoff{BaseDelay: time.Second, MaxDelay: 30 * time.Second, UseJitter: true}
	for {
		err := c.streamOnce(ctx, subs, out, backoff)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("signalk stream disconnected", "error", err)
		if backoff.Wait(ctx) != nil {
			return
		}
	}
}

func (c *Client) streamOnce(ctx context.Context, subs []Subscription, out chan<- PathValue, backoff *resilience.Backoff) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := c.ws.DialContext(ctx, c.streamURL(), header)
	if err != nil {
		return fmt.Errorf("%w: dial stream: %v", ErrServiceUnreachable, err)
	}
	defer func() { _ = conn.Close() }()

	// Closing the connection unblocks ReadMessage when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(subscribeMessage{Context: SelfContext, Subscribe: subs}); err != nil {
		return fmt.Errorf("send subscription: %w", err)
	}
	c.logger.Info("signalk stream subscribed", "paths", len(subs))
	backoff.Reset()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		var msg deltaMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("ignoring undecodable stream message", "error", err)
			continue
		}
		for _, u := range msg.Updates {
			for _, v := range u.Values {
				pv := PathValue{Context: msg.Context, Path: v.Path, Value: v.Value}
				select {
				case out <- pv:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func (c *Client) streamURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = streamPath
	u.RawQuery = "subscribe=none"
	return u.String()
}
