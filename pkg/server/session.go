package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/matter"
)

// ControllerFactory builds the controller of a new session. The server
// calls Load on it.
type ControllerFactory func(ctx context.Context) (*matter.Controller, error)

type session struct {
	id       string
	csrf     string
	ctrl     *matter.Controller
	lastSeen time.Time
}

type sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	factory ControllerFactory
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	opened  func()
	closed  func()
}

func newSessions(factory ControllerFactory) *sessions {
	return &sessions{
		items:   make(map[string]*session),
		factory: factory,
		ttl:     30 * time.Minute,
		now:     time.Now,
		logger:  zap.NewNop(),
		opened:  func() {},
		closed:  func() {},
	}
}

// get returns the live session for id and marks it as used. Expired
// sessions are closed and reported as missing.
func (s *sessions) get(id string) (*session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	sess, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.items, id)
		s.mu.Unlock()
		s.close(sess, "expired")
		return nil, false
	}
	sess.lastSeen = now
	s.mu.Unlock()
	return sess, true
}

func (s *sessions) create(ctx context.Context) (*session, error) {
	ctrl, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Load(ctx); err != nil {
		// The snapshot carries the failed lookup state; the page still renders.
		s.logger.Warn("server: session load failed", zap.Error(err))
	}

	sess := &session{
		id:   uuid.NewString(),
		csrf: uuid.NewString(),
		ctrl: ctrl,
	}
	s.mu.Lock()
	sess.lastSeen = s.now()
	s.items[sess.id] = sess
	s.mu.Unlock()

	s.opened()
	s.logger.Debug("server: session opened", zap.String("session", sess.id))
	return sess, nil
}

// sweep closes every expired session and returns how many were removed.
func (s *sessions) sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*session
	for id, sess := range s.items {
		if s.expired(sess, now) {
			delete(s.items, id)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.close(sess, "expired")
	}
	return len(expired)
}

func (s *sessions) closeAll() {
	s.mu.Lock()
	all := make([]*session, 0, len(s.items))
	for id, sess := range s.items {
		delete(s.items, id)
		all = append(all, sess)
	}
	s.mu.Unlock()

	for _, sess := range all {
		s.close(sess, "shutdown")
	}
}

func (s *sessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *sessions) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

func (s *sessions) close(sess *session, reason string) {
	if err := sess.ctrl.Close(); err != nil {
		s.logger.Warn("server: close session", zap.String("session", sess.id), zap.Error(err))
	}
	s.closed()
	s.logger.Debug("server: session closed", zap.String("session", sess.id), zap.String("reason", reason))
}
