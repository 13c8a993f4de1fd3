package settings

import (
	"errors"
	"log/slog"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/codec"
)

const (
	KeyConnections = "connections"
	KeyPreferences = "preferences"
)

// Loaded is the configuration read at startup.
type Loaded struct {
	Connections []api.Connection
	Preferences api.Preferences

	// Warnings lists decode problems that were recovered from by falling
	// back to defaults.
	Warnings []error
}

// Load reads connections and preferences. Corrupt values never fail
// startup: an undecodable connection list becomes empty, undecodable
// preferences become api.DefaultPreferences, and both are reported in
// Warnings. Only store I/O errors are returned.
func Load(store Store, logger *slog.Logger) (*Loaded, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "settings")

	out := &Loaded{Preferences: api.DefaultPreferences()}

	raw, err := codec.GetStringList(store, KeyConnections)
	switch {
	case errors.Is(err, api.ErrConfigDecode):
		logger.Warn("stored connections unreadable, starting with none", "error", err)
		out.Warnings = append(out.Warnings, err)
	case err != nil:
		return nil, errx.Wrap(ErrReadStore, err)
	default:
		conns := make([]api.Connection, 0, len(raw))
		for _, s := range raw {
			c, err := codec.DecodeConnection(s)
			if err != nil {
				conns = nil
				logger.Warn("stored connection unreadable, starting with none", "error", err)
				out.Warnings = append(out.Warnings, err)
				break
			}
			conns = append(conns, c)
		}
		out.Connections = conns
	}

	prefs, ok, err := store.Get(KeyPreferences)
	if err != nil {
		return nil, errx.Wrap(ErrReadStore, err)
	}
	if ok {
		p, err := codec.DecodePreferences(prefs)
		if err != nil {
			logger.Warn("stored preferences unreadable, using defaults", "error", err)
			out.Warnings = append(out.Warnings, err)
		} else {
			out.Preferences = p
		}
	}

	logger.Debug("settings loaded", "connections", len(out.Connections), "warnings", len(out.Warnings))
	return out, nil
}

// SaveConnections replaces the stored connection list.
func SaveConnections(store Store, conns []api.Connection) error {
	values := make([]string, len(conns))
	for i, c := range conns {
		values[i] = codec.EncodeConnection(c)
	}
	if err := codec.PutStringList(store, KeyConnections, values); err != nil {
		return errx.Wrap(ErrWriteStore, err)
	}
	return nil
}

// SavePreferences replaces the stored preferences.
func SavePreferences(store Store, p api.Preferences) error {
	if err := store.Put(KeyPreferences, codec.EncodePreferences(p)); err != nil {
		return errx.Wrap(ErrWriteStore, err)
	}
	return nil
}
