// Package profile holds the single live profile record and the panel selector.
package profile

import (
	"sync"

	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/pkg/errors"
	"go.uber.org/zap"
)

// View selects which panel is shown on narrow layouts.
type View string

const (
	ViewEdit    View = "edit"
	ViewPreview View = "preview"
)

func ParseView(raw string) (View, error) {
	switch View(raw) {
	case ViewEdit, ViewPreview:
		return View(raw), nil
	}
	return "", errors.NewValidationError("view must be edit or preview", "view", raw)
}

// Change is published after every record replacement.
type Change struct {
	Version uint64
	Profile domain.Profile
}

// Store owns the record. Writes replace the whole value; readers get copies.
type Store struct {
	mu      sync.RWMutex
	record  domain.Profile
	view    View
	version uint64
	subs    map[int]chan Change
	nextSub int
	logger  *zap.Logger
}

func NewStore(initial domain.Profile, logger *zap.Logger) *Store {
	return &Store{
		record: initial,
		view:   ViewEdit,
		subs:   make(map[int]chan Change),
		logger: logger,
	}
}

func (s *Store) Get() domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Snapshot returns the record together with its version.
func (s *Store) Snapshot() (domain.Profile, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record, s.version
}

// Set replaces the record. Last writer wins.
func (s *Store) Set(p domain.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(p)
	return nil
}

// Update computes the replacement from the current record under the write lock,
// so concurrent requests cannot lose each other's edits.
func (s *Store) Update(fn func(domain.Profile) (domain.Profile, error)) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.record)
	if err != nil {
		return s.record, err
	}
	if err := next.Validate(); err != nil {
		return s.record, err
	}
	s.replaceLocked(next)
	return next, nil
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(domain.DefaultProfile())
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Store) SetView(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	return nil
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers for change notifications. Each subscriber keeps only the
// latest pending change.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// must be called with mu held
func (s *Store) replaceLocked(p domain.Profile) {
	s.record = p
	s.version++

	change := Change{Version: s.version, Profile: p}
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- change:
		default:
		}
	}

	s.logger.Debug("Profile replaced", zap.Uint64("version", s.version))
}
