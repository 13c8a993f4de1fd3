// Package status answers "what does Perforce know about this file" and
// caches the answer until a mutating operation invalidates it.
package status

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/p4"
	"github.com/jingkaihe/p4gate/pkg/route"
)

// Runner is the part of p4.Wrapper the provider needs.
type Runner interface {
	Execute(ctx context.Context, template, file string) (*p4.Result, error)
}

// Provider caches file status per canonical path. Known and not-known
// results are both cached; there is no expiry.
//
// Each path has a generation that Invalidate bumps. A query stores its
// result only if the generation it started under is still current, so a
// query racing an invalidation never caches the old answer. Generations
// are kept only while a query for the path is in flight.
type Provider struct {
	runner Runner
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*api.FileStatus
	gens    map[string]uint64
	queries map[string]int
	epoch   uint64

	flight singleflight.Group
}

type Option func(*Provider)

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewProvider(runner Runner, opts ...Option) *Provider {
	p := &Provider{
		runner:  runner,
		logger:  slog.Default(),
		entries: make(map[string]*api.FileStatus),
		gens:    make(map[string]uint64),
		queries: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "status")
	return p
}

// Status returns the file's status, querying p4 fstat on a cache miss.
// A nil status with a nil error means Perforce does not know the file,
// including when no connection owns the path.
func (p *Provider) Status(ctx context.Context, path string) (*api.FileStatus, error) {
	path = route.Canonical(path)

	p.mu.Lock()
	if st, ok := p.entries[path]; ok {
		p.mu.Unlock()
		return clone(st), nil
	}
	epoch, gen := p.epoch, p.gens[path]
	p.queries[path]++
	p.mu.Unlock()
	defer p.done(path)

	key := strconv.FormatUint(epoch, 10) + ":" + strconv.FormatUint(gen, 10) + ":" + path
	v, err, _ := p.flight.Do(key, func() (any, error) {
		st, err := p.query(ctx, path)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		if p.epoch == epoch && p.gens[path] == gen {
			p.entries[path] = st
		}
		p.mu.Unlock()
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.(*api.FileStatus)), nil
}

// Invalidate drops the cached status of path.
func (p *Provider) Invalidate(path string) {
	path = route.Canonical(path)
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, path)
	if p.queries[path] > 0 {
		p.gens[path]++
	}
}

// InvalidateAll drops every cached status.
func (p *Provider) InvalidateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]*api.FileStatus)
	p.gens = make(map[string]uint64)
	p.epoch++
}

// done releases a query's hold on the generation of path.
func (p *Provider) done(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries[path]--
	if p.queries[path] <= 0 {
		delete(p.queries, path)
		delete(p.gens, path)
	}
}

// Len returns the number of cached entries.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Provider) query(ctx context.Context, path string) (*api.FileStatus, error) {
	res, err := p.runner.Execute(ctx, "fstat", path)
	if err != nil {
		if errors.Is(err, api.ErrConnectionNotFound) {
			return nil, nil
		}
		var cmdErr *p4.CommandError
		if errors.As(err, &cmdErr) && !cmdErr.Timeout && IsNotKnown(cmdErr.Stderr) {
			return nil, nil
		}
		p.logger.Warn("fstat failed", "path", path, "error", err)
		return nil, errx.Wrap(ErrQuery, err)
	}

	st := ParseFstat(string(res.Stdout))
	if st == nil {
		if !IsNotKnown(string(res.Stdout) + string(res.Stderr)) {
			p.logger.Debug("fstat returned no record", "path", path)
		}
		return nil, nil
	}
	st.Path = path
	return st, nil
}

func clone(st *api.FileStatus) *api.FileStatus {
	if st == nil {
		return nil
	}
	c := *st
	return &c
}
