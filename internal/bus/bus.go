// Package bus is the broadcast channel between deckline processes on one
// machine: bar instances, hook handlers and focus callbacks. Each message is
// one JSON envelope file in a shared directory, written atomically and picked
// up by every watcher; there are no acknowledgments and no central broker.
package bus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/asheshgoplani/deckline/internal/logging"
)

var busLog = logging.ForComponent(logging.CompBus)

// Named channels. Every envelope carries exactly one of these.
const (
	// ChannelHook carries a lifecycle payload from the hook bridge.
	ChannelHook = "hook"
	// ChannelRequest asks all other instances to broadcast their state.
	ChannelRequest = "request"
	// ChannelSync carries a full pane -> session mapping.
	ChannelSync = "sync"
	// ChannelSettings carries a full settings value.
	ChannelSettings = "settings"
	// ChannelFocus carries a bare pane id from a notification click.
	ChannelFocus = "focus"
	// ChannelTopology carries a workspace topology snapshot.
	ChannelTopology = "topology"
)

// Envelope wraps one bus message.
type Envelope struct {
	ID       string          `json:"id"`
	Instance string          `json:"instance"`
	Channel  string          `json:"channel"`
	TS       int64           `json:"ts"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Bus publishes messages into a shared directory. Each process gets its own
// instance identity so watchers can drop their own broadcasts.
type Bus struct {
	dir      string
	instance string
	seq      atomic.Uint64
}

// New opens (and creates if needed) the bus directory.
func New(dir string) (*Bus, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create bus dir: %w", err)
	}
	return &Bus{dir: dir, instance: uuid.NewString()}, nil
}

// Instance returns this process's bus identity.
func (b *Bus) Instance() string {
	return b.instance
}

// Publish broadcasts a payload on a channel. payload may be nil for bare
// signals such as a sync request.
func (b *Bus) Publish(channel string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", channel, err)
		}
		raw = data
	}

	env := Envelope{
		ID:       uuid.NewString(),
		Instance: b.instance,
		Channel:  channel,
		TS:       time.Now().UnixMilli(),
		Payload:  raw,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	// tmp + rename so watchers never see a partial write
	name := fmt.Sprintf("%d-%s-%d.json", time.Now().UnixNano(), b.instance[:8], b.seq.Add(1))
	path := filepath.Join(b.dir, name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publish envelope: %w", err)
	}

	busLog.Debug("published", slog.String("channel", channel), slog.String("id", env.ID))
	return nil
}
