// Package route maps filesystem paths to the Perforce connection whose
// workspace owns them.
//
// Matching is a plain string-prefix test against each workspace root in
// configured order, and the first match wins. Roots are not treated as
// path segments: a root of /ws1 also owns /ws12/file. Callers that nest or
// overlap workspaces control precedence through configuration order.
package route

import (
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/jingkaihe/p4gate/pkg/api"
)

// Entry pairs a connection with its normalized workspace root.
type Entry struct {
	Connection api.Connection
	Root       string
}

// Snapshot is an immutable routing table. Connections and roots are built
// together and never change after publication.
type Snapshot struct {
	entries       []Entry
	caseSensitive bool
}

func newSnapshot(conns []api.Connection, caseSensitive bool) *Snapshot {
	s := &Snapshot{
		entries:       make([]Entry, len(conns)),
		caseSensitive: caseSensitive,
	}
	for i, c := range conns {
		s.entries[i] = Entry{Connection: c, Root: s.normalize(c.WorkspacePath)}
	}
	return s
}

func (s *Snapshot) normalize(path string) string {
	if s.caseSensitive {
		return path
	}
	return strings.ToLower(path)
}

// Find returns the first connection whose root is a prefix of path. path
// is expected to be canonical already.
func (s *Snapshot) Find(path string) (api.Connection, bool) {
	p := s.normalize(path)
	for _, e := range s.entries {
		if strings.HasPrefix(p, e.Root) {
			return e.Connection, true
		}
	}
	return api.Connection{}, false
}

func (s *Snapshot) Len() int { return len(s.entries) }

func (s *Snapshot) CaseSensitive() bool { return s.caseSensitive }

// Entries returns a copy of the table.
func (s *Snapshot) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Store publishes routing snapshots. Readers never block; Replace swaps in
// a fully built snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore(conns []api.Connection, caseSensitive bool) *Store {
	s := &Store{}
	s.Replace(conns, caseSensitive)
	return s
}

// Replace rebuilds the table from conns. The slice is copied.
func (s *Store) Replace(conns []api.Connection, caseSensitive bool) {
	s.current.Store(newSnapshot(append([]api.Connection(nil), conns...), caseSensitive))
}

func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Connections returns a copy of the configured connections in order.
func (s *Store) Connections() []api.Connection {
	snap := s.current.Load()
	out := make([]api.Connection, len(snap.entries))
	for i, e := range snap.entries {
		out[i] = e.Connection
	}
	return out
}

// Find canonicalizes path and returns its owning connection.
func (s *Store) Find(path string) (api.Connection, bool) {
	if path == "" {
		return api.Connection{}, false
	}
	return s.current.Load().Find(Canonical(path))
}

// TopmostManagedAncestor returns the workspace root that owns path.
func (s *Store) TopmostManagedAncestor(path string) (string, bool) {
	c, ok := s.Find(path)
	if !ok {
		return "", false
	}
	return c.WorkspacePath, true
}

// Canonical resolves path to an absolute path with symlinks evaluated.
// For a path that does not exist, symlinks are evaluated on its deepest
// existing ancestor and the missing tail is joined back, so a file keeps
// the same canonical form before and after it is deleted. It never
// returns an empty string for a non-empty input.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	dir, tail := abs, ""
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		tail = filepath.Join(filepath.Base(dir), tail)
		dir = parent
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, tail)
		}
	}
}
