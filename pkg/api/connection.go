package api

import (
	"strings"

	"github.com/jingkaihe/p4gate/internal/errx"
)

// Connection binds one Perforce server, user and client to a workspace
// root on the local filesystem. The full tuple is its identity.
//
// Password is stored in plain text because that is what p4 -P expects and
// what existing stored settings contain.
type Connection struct {
	Server        string `json:"server"`
	User          string `json:"user"`
	Client        string `json:"client"`
	Password      string `json:"password,omitempty"`
	WorkspacePath string `json:"workspace_path"`
}

// Validate checks the fields required for routing.
func (c Connection) Validate() error {
	if strings.TrimSpace(c.WorkspacePath) == "" {
		return errx.With(ErrInvalidConnection, ": workspace path cannot be empty")
	}
	return nil
}

// String renders the connection without its password.
func (c Connection) String() string {
	var b strings.Builder
	if c.User != "" {
		b.WriteString(c.User)
		b.WriteByte('@')
	}
	b.WriteString(c.Server)
	if c.Client != "" {
		b.WriteByte('/')
		b.WriteString(c.Client)
	}
	b.WriteString(" -> ")
	b.WriteString(c.WorkspacePath)
	return b.String()
}
