// Package store persists submitted matters. Two backends are provided: an
// in-memory store for tests and development, and a SQLite store.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/model"
)

// Supported driver names for Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("store: matter not found")

// Matter is one confirmed submission.
type Matter struct {
	ID        string           `json:"id"`
	Values    model.FormValues `json:"values"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Store saves and lists matters.
type Store interface {
	Save(ctx context.Context, m Matter) error
	Get(ctx context.Context, id string) (Matter, error)
	List(ctx context.Context) ([]Matter, error)
	Close() error
}

// Open returns the store for driver. dsn is ignored by the memory driver.
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
}

// SubmitterOption customises the Submitter adapter.
type SubmitterOption func(*submitter)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) SubmitterOption {
	return func(s *submitter) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDs overrides the matter id generator.
func WithIDs(next func() string) SubmitterOption {
	return func(s *submitter) {
		if next != nil {
			s.id = next
		}
	}
}

// WithSaved registers a callback invoked after each successful save.
func WithSaved(fn func(Matter)) SubmitterOption {
	return func(s *submitter) {
		s.saved = fn
	}
}

type submitter struct {
	store Store
	now   func() time.Time
	id    func() string
	saved func(Matter)
}

// Submitter adapts st to matter.Submitter. Every submission becomes a new
// Matter with a random UUID.
func Submitter(st Store, options ...SubmitterOption) matter.Submitter {
	s := &submitter{
		store: st,
		now:   time.Now,
		id:    uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *submitter) Submit(ctx context.Context, values model.FormValues) error {
	if s.store == nil {
		return errors.New("store: no store configured")
	}
	m := Matter{
		ID:        s.id(),
		Values:    values,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, m); err != nil {
		return err
	}
	if s.saved != nil {
		s.saved(m)
	}
	return nil
}
