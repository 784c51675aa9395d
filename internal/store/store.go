package store

import (
	"sync"

	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/model"
)

// Store is the authoritative record of live sessions. It is injected into the
// services so the in-memory implementation can be swapped for a distributed
// backing store without touching lifecycle or scoring logic.
//
// Mutate serializes all state changes per session; fn must not perform I/O.
type Store interface {
	// Put inserts a new session. Fails with CONFLICT if the id is already
	// present or the code is held by a non-completed session.
	Put(sess *model.Session) error
	// GetByID returns a deep copy of the session, completed or not.
	GetByID(id string) (*model.Session, bool)
	// GetByCode resolves a join code. Only non-completed sessions are
	// considered; codes of completed sessions are recycled.
	GetByCode(code string) (*model.Session, bool)
	// CodeInUse reports whether a code is held by a non-completed session.
	CodeInUse(code string) bool
	// Mutate applies fn to the session under its per-session lock and
	// returns a deep copy of the resulting state. If fn returns an error
	// the session is left unchanged only if fn itself made no writes;
	// callers are expected to validate before writing.
	// Entering the completed phase releases the session's join code.
	Mutate(id string, fn func(*model.Session) error) (*model.Session, error)
	// List returns deep copies of every session, for the reaper.
	List() []*model.Session
	// Delete removes a session entirely. Polling clients see NOT_FOUND
	// afterwards, which is their terminal signal.
	Delete(id string)
}

type entry struct {
	mu   sync.Mutex
	sess *model.Session
}

// MemoryStore keeps every session in process memory. The outer lock guards
// only the id and code indexes; each session carries its own mutex so
// contention is scoped per session id.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*entry
	byCode map[string]string // code -> session id, non-completed only
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*entry),
		byCode: make(map[string]string),
	}
}

func (s *MemoryStore) Put(sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[sess.ID]; exists {
		return apperrors.New(apperrors.ErrCodeConflict, "session id already exists")
	}
	if _, taken := s.byCode[sess.Code]; taken {
		return apperrors.New(apperrors.ErrCodeConflict, "join code already in use")
	}

	s.byID[sess.ID] = &entry{sess: sess.Clone()}
	if !sess.Phase.Terminal() {
		s.byCode[sess.Code] = sess.ID
	}
	return nil
}

func (s *MemoryStore) GetByID(id string) (*model.Session, bool) {
	s.mu.RLock()
	e, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone(), true
}

func (s *MemoryStore) GetByCode(code string) (*model.Session, bool) {
	s.mu.RLock()
	id, ok := s.byCode[code]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.GetByID(id)
}

func (s *MemoryStore) CodeInUse(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byCode[code]
	return ok
}

func (s *MemoryStore) Mutate(id string, fn func(*model.Session) error) (*model.Session, error) {
	s.mu.RLock()
	e, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("Session")
	}

	e.mu.Lock()
	wasTerminal := e.sess.Phase.Terminal()
	err := fn(e.sess)
	nowTerminal := e.sess.Phase.Terminal()
	snapshot := e.sess.Clone()
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if nowTerminal && !wasTerminal {
		s.mu.Lock()
		if s.byCode[snapshot.Code] == id {
			delete(s.byCode, snapshot.Code)
		}
		s.mu.Unlock()
	}

	return snapshot, nil
}

func (s *MemoryStore) List() []*model.Session {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.byID))
	for _, e := range s.byID {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*model.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.sess.Clone())
		e.mu.Unlock()
	}
	return out
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return
	}
	if s.byCode[e.sess.Code] == id {
		delete(s.byCode, e.sess.Code)
	}
	delete(s.byID, id)
}
