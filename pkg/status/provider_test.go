package status

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/p4"
)

type fakeRunner struct {
	calls atomic.Int32
	run   func(ctx context.Context, file string) (*p4.Result, error)
}

func (f *fakeRunner) Execute(ctx context.Context, template, file string) (*p4.Result, error) {
	f.calls.Add(1)
	if template != "fstat" {
		return nil, errors.New("unexpected template " + template)
	}
	return f.run(ctx, file)
}

func fstatOutput(action string) func(context.Context, string) (*p4.Result, error) {
	return func(_ context.Context, file string) (*p4.Result, error) {
		out := "... depotFile //depot/f\n... clientFile " + file + "\n"
		if action != "" {
			out += "... action " + action + "\n"
		}
		return &p4.Result{Stdout: []byte(out)}, nil
	}
}

func TestStatusCachesKnownFile(t *testing.T) {
	runner := &fakeRunner{run: fstatOutput("edit")}
	p := NewProvider(runner)
	path := filepath.Join(t.TempDir(), "f")

	st, err := p.Status(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, api.ActionEdit, st.Action)
	assert.Equal(t, path, st.Path)

	_, err = p.Status(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestStatusReturnsCopies(t *testing.T) {
	p := NewProvider(&fakeRunner{run: fstatOutput("edit")})
	path := filepath.Join(t.TempDir(), "f")

	st, err := p.Status(context.Background(), path)
	require.NoError(t, err)
	st.Action = api.ActionDelete

	again, err := p.Status(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, api.ActionEdit, again.Action)
}

func TestStatusCachesNotKnown(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context, string) (*p4.Result, error) {
		return &p4.Result{ExitCode: 1}, &p4.CommandError{ExitCode: 1, Stderr: "f - no such file(s).\n"}
	}}
	p := NewProvider(runner)
	path := filepath.Join(t.TempDir(), "f")

	for i := 0; i < 3; i++ {
		st, err := p.Status(context.Background(), path)
		require.NoError(t, err)
		assert.Nil(t, st)
	}
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.Equal(t, 1, p.Len())
}

func TestStatusNotKnownOnSuccessfulExit(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context, string) (*p4.Result, error) {
		return &p4.Result{Stderr: []byte("f - file(s) not in client view.\n")}, nil
	}}
	p := NewProvider(runner)

	st, err := p.Status(context.Background(), filepath.Join(t.TempDir(), "f"))
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestStatusNoConnection(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context, string) (*p4.Result, error) {
		return nil, api.ErrConnectionNotFound
	}}
	p := NewProvider(runner)

	st, err := p.Status(context.Background(), filepath.Join(t.TempDir(), "f"))
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestStatusErrorNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	runner := &fakeRunner{run: func(ctx context.Context, file string) (*p4.Result, error) {
		if fail.Load() {
			return nil, &p4.CommandError{ExitCode: 1, Stderr: "Perforce password (P4PASSWD) invalid or unset."}
		}
		return fstatOutput("")(ctx, file)
	}}
	p := NewProvider(runner)
	path := filepath.Join(t.TempDir(), "f")

	_, err := p.Status(context.Background(), path)
	require.ErrorIs(t, err, ErrQuery)
	assert.ErrorIs(t, err, api.ErrCommandFailed)
	assert.Equal(t, 0, p.Len())

	fail.Store(false)
	st, err := p.Status(context.Background(), path)
	require.NoError(t, err)
	assert.NotNil(t, st)
}

func TestStatusTimeoutIsAnError(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context, string) (*p4.Result, error) {
		return nil, &p4.CommandError{ExitCode: -1, Timeout: true, Stderr: "no such file(s)", Err: context.DeadlineExceeded}
	}}
	p := NewProvider(runner)

	_, err := p.Status(context.Background(), filepath.Join(t.TempDir(), "f"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvalidate(t *testing.T) {
	action := atomic.Value{}
	action.Store("")
	runner := &fakeRunner{run: func(ctx context.Context, file string) (*p4.Result, error) {
		return fstatOutput(action.Load().(string))(ctx, file)
	}}
	p := NewProvider(runner)
	path := filepath.Join(t.TempDir(), "f")

	st, err := p.Status(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, api.ActionNone, st.Action)

	action.Store("edit")
	st, err = p.Status(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, api.ActionNone, st.Action, "served from cache")

	p.Invalidate(path)
	st, err = p.Status(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, api.ActionEdit, st.Action)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestInvalidateAll(t *testing.T) {
	runner := &fakeRunner{run: fstatOutput("")}
	p := NewProvider(runner)
	dir := t.TempDir()

	for _, name := range []string{"a", "b", "c"} {
		_, err := p.Status(context.Background(), filepath.Join(dir, name))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, p.Len())

	p.InvalidateAll()
	assert.Equal(t, 0, p.Len())

	_, err := p.Status(context.Background(), filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.Equal(t, int32(4), runner.calls.Load())
}

func TestInvalidateDuringQueryDiscardsResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	first.Store(true)
	runner := &fakeRunner{run: func(ctx context.Context, file string) (*p4.Result, error) {
		if first.CompareAndSwap(true, false) {
			close(started)
			<-release
			return fstatOutput("")(ctx, file)
		}
		return fstatOutput("edit")(ctx, file)
	}}
	p := NewProvider(runner)
	path := filepath.Join(t.TempDir(), "f")

	done := make(chan *api.FileStatus)
	go func() {
		st, _ := p.Status(context.Background(), path)
		done <- st
	}()

	<-started
	p.Invalidate(path)
	close(release)

	stale := <-done
	require.NotNil(t, stale)
	assert.Equal(t, api.ActionNone, stale.Action)
	assert.Equal(t, 0, p.Len(), "stale result must not be cached")

	st, err := p.Status(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, api.ActionEdit, st.Action)
}

func TestConcurrentMissesShareQuery(t *testing.T) {
	release := make(chan struct{})
	runner := &fakeRunner{run: func(ctx context.Context, file string) (*p4.Result, error) {
		<-release
		return fstatOutput("add")(ctx, file)
	}}
	p := NewProvider(runner)
	path := filepath.Join(t.TempDir(), "f")

	const n = 10
	var wg sync.WaitGroup
	results := make([]*api.FileStatus, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st, err := p.Status(context.Background(), path)
			assert.NoError(t, err)
			results[i] = st
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), runner.calls.Load())
	for _, st := range results {
		require.NotNil(t, st)
		assert.Equal(t, api.ActionAdd, st.Action)
	}
}

func TestInvalidateAfterDeleteThroughSymlink(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(target, link))
	viaLink := filepath.Join(link, "a.c")
	viaTarget := filepath.Join(target, "a.c")
	require.NoError(t, os.WriteFile(viaTarget, nil, 0644))

	var known atomic.Bool
	known.Store(true)
	runner := &fakeRunner{run: func(ctx context.Context, file string) (*p4.Result, error) {
		if !known.Load() {
			return &p4.Result{ExitCode: 1, Stderr: []byte(file + " - no such file(s).\n")}, nil
		}
		return fstatOutput("edit")(ctx, file)
	}}
	p := NewProvider(runner)

	st, err := p.Status(context.Background(), viaLink)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, api.ActionEdit, st.Action)

	require.NoError(t, os.Remove(viaTarget))
	known.Store(false)
	p.Invalidate(viaLink)

	st, err = p.Status(context.Background(), viaTarget)
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestGenerationsDoNotAccumulate(t *testing.T) {
	p := NewProvider(&fakeRunner{run: fstatOutput("")})
	dir := t.TempDir()

	for i := 0; i < 100; i++ {
		path := filepath.Join(dir, "f", strconv.Itoa(i))
		_, err := p.Status(context.Background(), path)
		require.NoError(t, err)
		p.Invalidate(path)
		p.Invalidate(path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.gens)
	assert.Empty(t, p.queries)
	assert.Empty(t, p.entries)
}

func TestGenerationsReleasedAfterRacingQuery(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	runner := &fakeRunner{run: func(ctx context.Context, file string) (*p4.Result, error) {
		close(started)
		<-release
		return fstatOutput("")(ctx, file)
	}}
	p := NewProvider(runner)
	path := filepath.Join(t.TempDir(), "f")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Status(context.Background(), path)
	}()

	<-started
	p.Invalidate(path)
	p.mu.Lock()
	assert.Len(t, p.gens, 1, "generation held while the query runs")
	p.mu.Unlock()

	close(release)
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.gens)
	assert.Empty(t, p.queries)
	assert.Empty(t, p.entries, "racing result is not cached")
}
