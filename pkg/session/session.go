// Package session holds the per-session "current result" slot. One
// slot per session, fully replaced on a successful query and left
// untouched on failure. Sequence numbers implement last-request-wins:
// a completion for a superseded request is discarded, so a slow reply
// can never overwrite a newer one.
package session

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"quickprice/pkg/models"
)

type slot struct {
	seq       uint64
	query     string
	result    *models.ComparisonResult
	updatedAt time.Time
}

// Store keeps session slots in a bounded in-memory LRU. Nothing is
// persisted; eviction simply forgets a session's current result.
// Sequence numbers are minted from a store-wide counter, so a slot
// that is evicted and recreated can never hand out a number an older
// in-flight request still holds.
type Store struct {
	mu      sync.Mutex
	nextSeq uint64
	slots   *lru.Cache[string, *slot]
}

func NewStore(capacity int) (*Store, error) {
	slots, err := lru.New[string, *slot](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{slots: slots}, nil
}

// Begin registers a new request for the session and returns its
// sequence number. Any earlier in-flight request for the same session
// is superseded from this point on.
func (s *Store) Begin(sessionID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots.Get(sessionID)
	if !ok {
		sl = &slot{}
		s.slots.Add(sessionID, sl)
	}
	s.nextSeq++
	sl.seq = s.nextSeq
	return sl.seq
}

// Complete stores a successful result for the given request. It
// reports false, and stores nothing, when the request was superseded
// by a newer Begin or the session was evicted meanwhile.
func (s *Store) Complete(sessionID string, seq uint64, query string, result *models.ComparisonResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots.Get(sessionID)
	if !ok || sl.seq != seq {
		return false
	}
	sl.query = query
	sl.result = result
	sl.updatedAt = time.Now()
	return true
}

// Current returns the session's current result and the query that
// produced it. ok is false when the session holds no result yet.
func (s *Store) Current(sessionID string) (result *models.ComparisonResult, query string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, found := s.slots.Get(sessionID)
	if !found || sl.result == nil {
		return nil, "", false
	}
	return sl.result, sl.query, true
}

// Len reports the number of live session slots.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots.Len()
}
