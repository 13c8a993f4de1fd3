package route

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/p4gate/pkg/api"
)

func conn(client, root string) api.Connection {
	return api.Connection{Server: "perforce:1666", User: "u", Client: client, WorkspacePath: root}
}

func TestSnapshotFindDistinctRoots(t *testing.T) {
	snap := newSnapshot([]api.Connection{
		conn("a", "/depot/a"),
		conn("b", "/depot/b"),
		conn("c", "/other/c"),
	}, true)

	tests := []struct {
		path   string
		client string
		found  bool
	}{
		{"/depot/a/src/main.c", "a", true},
		{"/depot/b/README", "b", true},
		{"/other/c/x/y/z", "c", true},
		{"/depot/d/file", "", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := snap.Find(tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.client, got.Client)
		})
	}
}

func TestSnapshotFindEmpty(t *testing.T) {
	snap := newSnapshot(nil, true)
	_, ok := snap.Find("/anything")
	assert.False(t, ok)
}

func TestSnapshotFindRootItself(t *testing.T) {
	snap := newSnapshot([]api.Connection{conn("a", "/ws")}, true)
	got, ok := snap.Find("/ws")
	require.True(t, ok)
	assert.Equal(t, "a", got.Client)
}

func TestSnapshotFirstMatchWins(t *testing.T) {
	// /a/ws is a string prefix of /a/ws2/file, so whichever of the two
	// roots comes first in configuration order owns it.
	shortFirst := newSnapshot([]api.Connection{conn("short", "/a/ws"), conn("long", "/a/ws2")}, true)
	got, ok := shortFirst.Find("/a/ws2/file")
	require.True(t, ok)
	assert.Equal(t, "short", got.Client)

	longFirst := newSnapshot([]api.Connection{conn("long", "/a/ws2"), conn("short", "/a/ws")}, true)
	got, ok = longFirst.Find("/a/ws2/file")
	require.True(t, ok)
	assert.Equal(t, "long", got.Client)
}

func TestSnapshotPrefixIsNotSegmentAware(t *testing.T) {
	snap := newSnapshot([]api.Connection{conn("ws1", "/ws1")}, true)
	got, ok := snap.Find("/ws12/file.txt")
	require.True(t, ok)
	assert.Equal(t, "ws1", got.Client)
}

func TestSnapshotCaseInsensitive(t *testing.T) {
	snap := newSnapshot([]api.Connection{conn("proj", "/proj")}, false)
	got, ok := snap.Find("/Proj/src/Main.txt")
	require.True(t, ok)
	assert.Equal(t, "proj", got.Client)
	assert.Equal(t, "/proj", got.WorkspacePath)
}

func TestSnapshotCaseInsensitiveUpperRoot(t *testing.T) {
	snap := newSnapshot([]api.Connection{conn("proj", "/Work/Proj")}, false)
	_, ok := snap.Find("/work/PROJ/a.c")
	assert.True(t, ok)
	assert.Equal(t, "/work/proj", snap.Entries()[0].Root)
}

func TestSnapshotCaseSensitive(t *testing.T) {
	snap := newSnapshot([]api.Connection{conn("proj", "/proj")}, true)
	_, ok := snap.Find("/Proj/src/Main.txt")
	assert.False(t, ok)
}

func TestStoreFindCanonicalizes(t *testing.T) {
	dir := t.TempDir()
	root := Canonical(dir)
	store := NewStore([]api.Connection{conn("tmp", root)}, true)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), nil, 0644))
	file := filepath.Join(dir, "sub", "..", "file.txt")
	got, ok := store.Find(file)
	require.True(t, ok)
	assert.Equal(t, "tmp", got.Client)

	ancestor, ok := store.TopmostManagedAncestor(file)
	require.True(t, ok)
	assert.Equal(t, root, ancestor)
}

func TestStoreFindFollowsSymlink(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(target, link))
	require.NoError(t, os.WriteFile(filepath.Join(target, "f.txt"), nil, 0644))

	store := NewStore([]api.Connection{conn("target", Canonical(target))}, true)
	_, ok := store.Find(filepath.Join(link, "f.txt"))
	assert.True(t, ok)
}

func TestStoreFindEmptyPath(t *testing.T) {
	store := NewStore([]api.Connection{conn("root", "/")}, true)
	_, ok := store.Find("")
	assert.False(t, ok)
}

func TestCanonicalMissingFileKeepsTail(t *testing.T) {
	dir := t.TempDir()
	got := Canonical(filepath.Join(dir, "does", "not", "exist.txt"))
	assert.Equal(t, filepath.Join(Canonical(dir), "does", "not", "exist.txt"), got)
}

func TestCanonicalStableAcrossDeleteThroughSymlink(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(target, link))
	file := filepath.Join(link, "a.c")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	before := Canonical(file)
	assert.Equal(t, filepath.Join(Canonical(target), "a.c"), before)

	require.NoError(t, os.Remove(file))
	assert.Equal(t, before, Canonical(file))
	assert.Equal(t, filepath.Join(Canonical(target), "sub", "new.c"), Canonical(filepath.Join(link, "sub", "new.c")))
}

func TestStoreFindMissingFileThroughSymlink(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(target, link))

	store := NewStore([]api.Connection{conn("target", Canonical(target))}, true)
	got, ok := store.Find(filepath.Join(link, "gone.c"))
	require.True(t, ok)
	assert.Equal(t, "target", got.Client)
}

func TestStoreReplaceCopiesInput(t *testing.T) {
	conns := []api.Connection{conn("a", "/a")}
	store := NewStore(conns, true)
	conns[0].Client = "mutated"

	assert.Equal(t, "a", store.Connections()[0].Client)
}

func TestStoreConcurrentReplaceAndFind(t *testing.T) {
	small := []api.Connection{conn("a", "/a")}
	large := make([]api.Connection, 0, 50)
	for i := 0; i < 50; i++ {
		large = append(large, conn(fmt.Sprintf("c%d", i), fmt.Sprintf("/r%d", i)))
	}
	store := NewStore(small, true)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				store.Replace(large, i%4 == 0)
			} else {
				store.Replace(small, true)
			}
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := store.Snapshot()
				entries := snap.Entries()
				assert.Equal(t, snap.Len(), len(entries))
				for _, e := range entries {
					if snap.CaseSensitive() {
						assert.Equal(t, e.Connection.WorkspacePath, e.Root)
					}
				}
			}
		}()
	}
	wg.Wait()
}
