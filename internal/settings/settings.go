// Package settings holds the user-facing display settings that are persisted
// to disk and broadcast wholesale between bar instances.
package settings

import (
	"encoding/json"
	"fmt"
)

// NotifyMode controls when a waiting session fires a desktop alert.
type NotifyMode int

const (
	NotifyAlways NotifyMode = iota
	NotifyUnfocused
	NotifyNever
)

// Cycle advances to the next mode: always -> unfocused -> never -> always.
func (m NotifyMode) Cycle() NotifyMode {
	switch m {
	case NotifyAlways:
		return NotifyUnfocused
	case NotifyUnfocused:
		return NotifyNever
	default:
		return NotifyAlways
	}
}

func (m NotifyMode) String() string {
	switch m {
	case NotifyUnfocused:
		return "Unfocused"
	case NotifyNever:
		return "Never"
	default:
		return "Always"
	}
}

// MarshalJSON encodes the mode as its wire name.
func (m NotifyMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a wire name; unknown names fall back to the default
// rather than failing the whole load.
func (m *NotifyMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("notify mode: %w", err)
	}
	switch s {
	case "Unfocused":
		*m = NotifyUnfocused
	case "Never":
		*m = NotifyNever
	default:
		*m = NotifyAlways
	}
	return nil
}

// FlashMode controls the attention highlight applied when a session starts
// waiting for permission.
type FlashMode int

const (
	FlashOff FlashMode = iota
	FlashOnce
	FlashPersist
)

// Cycle advances to the next mode: once -> persist -> off -> once.
func (m FlashMode) Cycle() FlashMode {
	switch m {
	case FlashOnce:
		return FlashPersist
	case FlashPersist:
		return FlashOff
	default:
		return FlashOnce
	}
}

func (m FlashMode) String() string {
	switch m {
	case FlashOff:
		return "Off"
	case FlashPersist:
		return "Persist"
	default:
		return "Once"
	}
}

// MarshalJSON encodes the mode as its wire name.
func (m FlashMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a wire name; unknown names fall back to the default.
func (m *FlashMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flash mode: %w", err)
	}
	switch s {
	case "Off":
		*m = FlashOff
	case "Persist":
		*m = FlashPersist
	default:
		*m = FlashOnce
	}
	return nil
}

// Settings is the process-wide display configuration. A settings message
// replaces the whole value; individual fields are never merged.
type Settings struct {
	Notifications NotifyMode `json:"notifications"`
	Flash         FlashMode  `json:"flash"`
	ElapsedTime   bool       `json:"elapsed_time"`
}

// Default returns the first-run settings.
func Default() Settings {
	return Settings{
		Notifications: NotifyAlways,
		Flash:         FlashOnce,
		ElapsedTime:   true,
	}
}

// Parse decodes settings JSON, overlaying present fields on the defaults so
// that a missing or unknown field never fails the load.
func Parse(data []byte) (Settings, error) {
	var raw struct {
		Notifications *NotifyMode `json:"notifications"`
		Flash         *FlashMode  `json:"flash"`
		ElapsedTime   *bool       `json:"elapsed_time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("parse settings: %w", err)
	}

	s := Default()
	if raw.Notifications != nil {
		s.Notifications = *raw.Notifications
	}
	if raw.Flash != nil {
		s.Flash = *raw.Flash
	}
	if raw.ElapsedTime != nil {
		s.ElapsedTime = *raw.ElapsedTime
	}
	return s, nil
}
