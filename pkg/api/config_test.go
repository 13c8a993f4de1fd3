package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	var c *Config
	assert.Equal(t, DefaultBinary, c.GetBinary())
	assert.Equal(t, DefaultCommandTimeout, c.GetCommandTimeout())
	require.NoError(t, c.Validate())
}

func TestConfigOverrides(t *testing.T) {
	c := &Config{Binary: "/opt/perforce/bin/p4", CommandTimeout: 5 * time.Second, StorePath: "/tmp/s.db"}
	assert.Equal(t, "/opt/perforce/bin/p4", c.GetBinary())
	assert.Equal(t, 5*time.Second, c.GetCommandTimeout())

	path, err := c.GetStorePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/s.db", path)
}

func TestConfigBlankBinaryFallsBack(t *testing.T) {
	c := &Config{Binary: "   "}
	assert.Equal(t, DefaultBinary, c.GetBinary())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero", cfg: Config{}},
		{name: "negative timeout", cfg: Config{CommandTimeout: -time.Second}, wantErr: true},
		{name: "relative events path", cfg: Config{EventsPath: "events.jsonl"}, wantErr: true},
		{name: "absolute events path", cfg: Config{EventsPath: "/var/log/p4gate.jsonl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"", ActionNone},
		{"edit", ActionEdit},
		{"add", ActionAdd},
		{"delete", ActionDelete},
		{"move/add", ActionMoveAdd},
		{"move/delete", ActionMoveDelete},
		{"integrate", ActionIntegrate},
		{"frobnicate", ActionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAction(tt.in))
		})
	}
}

func TestFileStatusOpened(t *testing.T) {
	var missing *FileStatus
	assert.False(t, missing.Opened())
	assert.False(t, (&FileStatus{Action: ActionNone}).Opened())
	assert.True(t, (&FileStatus{Action: ActionEdit}).Opened())
}

func TestConnectionString(t *testing.T) {
	c := Connection{Server: "perforce:1666", User: "alice", Client: "alice-ws", Password: "hunter2", WorkspacePath: "/ws"}
	assert.Equal(t, "alice@perforce:1666/alice-ws -> /ws", c.String())
	assert.NotContains(t, c.String(), "hunter2")
}

func TestConnectionValidate(t *testing.T) {
	require.ErrorIs(t, Connection{Server: "p:1666"}.Validate(), ErrInvalidConnection)
	require.NoError(t, Connection{WorkspacePath: "/ws"}.Validate())
}
