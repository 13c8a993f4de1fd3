// Package codec converts connections and preferences to and from the string
// forms kept in the settings store. The encodings are fixed: existing stored
// settings must keep decoding.
package codec

import (
	"strings"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/api"
)

// Delimiter separates connection fields. A field containing it cannot be
// round-tripped.
const Delimiter = "~=~"

const connectionFields = 5

// EncodeConnection renders server~=~user~=~client~=~password~=~workspacePath.
func EncodeConnection(c api.Connection) string {
	return strings.Join([]string{c.Server, c.User, c.Client, c.Password, c.WorkspacePath}, Delimiter)
}

// DecodeConnection parses the output of EncodeConnection. Empty fields are
// kept; anything other than exactly five fields is an error.
func DecodeConnection(s string) (api.Connection, error) {
	parts := strings.Split(s, Delimiter)
	if len(parts) != connectionFields {
		return api.Connection{}, errx.With(ErrConnectionFields, ": expected %d fields, got %d", connectionFields, len(parts))
	}
	return api.Connection{
		Server:        parts[0],
		User:          parts[1],
		Client:        parts[2],
		Password:      parts[3],
		WorkspacePath: parts[4],
	}, nil
}

// PreferencesLength is the size of an encoded Preferences value.
const PreferencesLength = 6

// EncodePreferences renders one 't' or 'f' per flag in the order
// interceptAdd, interceptDelete, interceptEdit, confirmEdit,
// caseSensitiveWorkspaces, printOutput.
func EncodePreferences(p api.Preferences) string {
	flags := [PreferencesLength]bool{
		p.InterceptAdd,
		p.InterceptDelete,
		p.InterceptEdit,
		p.ConfirmEdit,
		p.CaseSensitiveWorkspaces,
		p.PrintOutput,
	}
	b := make([]byte, PreferencesLength)
	for i, on := range flags {
		if on {
			b[i] = 't'
		} else {
			b[i] = 'f'
		}
	}
	return string(b)
}

// DecodePreferences reads flags by position. Any character other than 't'
// is false; characters past the sixth are ignored.
func DecodePreferences(s string) (api.Preferences, error) {
	if len(s) < PreferencesLength {
		return api.Preferences{}, errx.With(ErrPreferenceLength, ": expected %d characters, got %q", PreferencesLength, s)
	}
	return api.Preferences{
		InterceptAdd:            s[0] == 't',
		InterceptDelete:         s[1] == 't',
		InterceptEdit:           s[2] == 't',
		ConfirmEdit:             s[3] == 't',
		CaseSensitiveWorkspaces: s[4] == 't',
		PrintOutput:             s[5] == 't',
	}, nil
}
