package logging

import (
	"encoding/json"
	"time"
)

// Event is one structured audit record.
// Required fields: Timestamp, RunID, EventType, Summary.
type Event struct {
	Timestamp time.Time       `json:"ts"`
	RunID     string          `json:"run_id"`
	EventType string          `json:"event_type"`
	Summary   string          `json:"summary"`
	Component string          `json:"component,omitempty"`
	Tags      []string        `json:"tags,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

const (
	EventCommand   = "p4_command"
	EventIntercept = "intercept"
	EventSettings  = "settings"
)

// CommandData is the payload of p4_command events. Argv is always the
// redacted form.
type CommandData struct {
	Argv       []string `json:"argv"`
	File       string   `json:"file"`
	Server     string   `json:"server,omitempty"`
	Client     string   `json:"client,omitempty"`
	ExitCode   int      `json:"exit_code"`
	DurationMS int64    `json:"duration_ms"`
	TimedOut   bool     `json:"timed_out,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// InterceptData is the payload of intercept events.
type InterceptData struct {
	Op       string `json:"op"`
	File     string `json:"file"`
	Decision string `json:"decision"` // "intercepted", "passthrough", "declined", "failed"
	Action   string `json:"action,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SettingsData is the payload of settings events.
type SettingsData struct {
	Connections int    `json:"connections"`
	Preferences string `json:"preferences"`
}
