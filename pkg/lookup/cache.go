package lookup

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-matterform/pkg/model"
)

// Cached memoises successful lookups and collapses concurrent requests for the
// same key into a single call to the wrapped service. Failures are not cached.
type Cached struct {
	next  Service
	group singleflight.Group

	mu      sync.RWMutex
	regions []model.Region
	haveReg bool
	names   map[string][]model.NameOption
	details map[string]model.Details
}

var _ Service = (*Cached)(nil)

// NewCached wraps next with an in-memory cache.
func NewCached(next Service) *Cached {
	return &Cached{
		next:    next,
		names:   make(map[string][]model.NameOption),
		details: make(map[string]model.Details),
	}
}

// Regions returns the cached region list, fetching it once.
func (c *Cached) Regions(ctx context.Context) ([]model.Region, error) {
	c.mu.RLock()
	if c.haveReg {
		out := append([]model.Region(nil), c.regions...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	v, err := c.share(ctx, OpRegions, func(ctx context.Context) (any, error) {
		regions, err := c.next.Regions(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.regions, c.haveReg = regions, true
		c.mu.Unlock()
		return regions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]model.Region(nil), v.([]model.Region)...), nil
}

// NameOptions returns the cached options for region.
func (c *Cached) NameOptions(ctx context.Context, region string) ([]model.NameOption, error) {
	c.mu.RLock()
	if opts, ok := c.names[region]; ok {
		out := append([]model.NameOption(nil), opts...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	v, err := c.share(ctx, OpNameOptions+":"+region, func(ctx context.Context) (any, error) {
		opts, err := c.next.NameOptions(ctx, region)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.names[region] = opts
		c.mu.Unlock()
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]model.NameOption(nil), v.([]model.NameOption)...), nil
}

// Details returns the cached details for name.
func (c *Cached) Details(ctx context.Context, name string) (model.Details, error) {
	c.mu.RLock()
	if d, ok := c.details[name]; ok {
		c.mu.RUnlock()
		return cloneDetails(d), nil
	}
	c.mu.RUnlock()

	v, err := c.share(ctx, OpDetails+":"+name, func(ctx context.Context) (any, error) {
		d, err := c.next.Details(ctx, name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.details[name] = d
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return model.Details{}, err
	}
	return cloneDetails(v.(model.Details)), nil
}

// share runs fn once per key for all concurrent callers. The shared call is
// detached from any single caller's cancellation; a cancelled caller stops
// waiting and gets its own context error while the others keep waiting.
func (c *Cached) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(shared)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Purge drops every cached entry.
func (c *Cached) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions, c.haveReg = nil, false
	c.names = make(map[string][]model.NameOption)
	c.details = make(map[string]model.Details)
}

func cloneDetails(d model.Details) model.Details {
	d.Table = append([]model.TableEntry(nil), d.Table...)
	return d
}
