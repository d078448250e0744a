package match_management

import (
	"sort"
	"sync"
	"time"

	"duel/internal/models"
)

// MatchStore is the in-memory table of matches. Only the event loop writes
// to it; REST handlers read snapshot copies.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]models.Match
}

func NewMatchStore() *MatchStore {
	return &MatchStore{matches: make(map[string]models.Match)}
}

func (s *MatchStore) Put(m models.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.MatchID] = m.Clone()
}

func (s *MatchStore) Get(matchID string) (models.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[matchID]
	if !ok {
		return models.Match{}, false
	}
	return m.Clone(), true
}

func (s *MatchStore) Delete(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
}

// Active returns every match that is not completed or cancelled, oldest first.
func (s *MatchStore) Active() []models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if !m.Status.Terminal() {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveForConnection returns the ids of non-terminal matches the connection plays in.
func (s *MatchStore) ActiveForConnection(conn models.ConnectionHandle) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, m := range s.matches {
		if m.Status.Terminal() {
			continue
		}
		if m.PlayerByConnection(conn) != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// EvictExpired removes finished matches whose end time is older than retention.
func (s *MatchStore) EvictExpired(now time.Time, retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, m := range s.matches {
		if !m.Status.Terminal() || m.EndTime == nil {
			continue
		}
		if now.Sub(*m.EndTime) > retention {
			delete(s.matches, id)
			evicted++
		}
	}
	return evicted
}

func (s *MatchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
