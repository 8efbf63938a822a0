package navsync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/prefs"
	"github.com/ziadkadry99/doxnav/internal/site"
)

var ErrNoSession = errors.New("no such session")

// Manager owns the sessions of one site. Sessions share the site's shard
// caches and one preference store.
type Manager struct {
	site  *site.Site
	prefs prefs.Store
	opts  navtree.Options
	log   *zap.Logger
	rec   Recorder

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(s *site.Site, store prefs.Store, opts navtree.Options, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = prefs.Unavailable{}
	}
	return &Manager{
		site:     s,
		prefs:    store,
		opts:     opts,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// SetRecorder makes sessions created from now on log their navigations to r.
func (m *Manager) SetRecorder(r Recorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = r
}

// Site returns the managed site.
func (m *Manager) Site() *site.Site { return m.site }

// Create starts a session and loads loc in it.
func (m *Manager) Create(ctx context.Context, loc location.Location) (*Session, error) {
	id := uuid.New().String()
	sess := NewSession(ctx, id, m.site, m.prefs, m.opts, m.log)

	m.mu.Lock()
	m.sessions[id] = sess
	if m.rec != nil {
		sess.SetRecorder(m.rec)
	}
	m.mu.Unlock()

	if err := sess.Load(ctx, loc); err != nil {
		m.Delete(id)
		return nil, fmt.Errorf("loading %s: %w", loc, err)
	}
	m.log.Debug("session created", zap.String("session", id), zap.Stringer("location", loc))
	return sess, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return sess, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	delete(m.sessions, id)
	return nil
}

// IDs lists the session ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
