package models

import (
	"errors"
	"sync"

	"go.uber.org/atomic"
)

// ErrStoreUnavailable signals that the backing store cannot be reached.
// The in-memory store never returns it; the contract carries it so durable
// backends can propagate outages instead of reporting phantom zero counts.
var ErrStoreUnavailable = errors.New("star store unavailable")

type StarStoreInterface interface {
	RegisterUser(userID, displayName string)
	IncrementStar(userID, dayKey string) (int, error)
	GetUserDayCounts(userID string) (map[string]int, error)
	ListUsers() ([]string, error)
	GetDisplayNames() (map[string]string, error)
	CountUsers() int
	CountStars() int
	Snapshot() *Storage
	PutSnapshot(storage *Storage)
	PruneBefore(dayKey string) int
	Dirty() bool
	ClearDirty()
}

// StarStore keeps per-user day buckets of star counts plus the registry of
// known users in registration order. All mutations go through the store's
// lock, so the per-(user, day) increment is atomic under concurrent requests.
type StarStore struct {
	mu    sync.RWMutex
	order []string
	names map[string]string
	stars map[string]map[string]int
	dirty atomic.Bool
}

func NewStarStore() StarStoreInterface {
	return &StarStore{
		names: make(map[string]string),
		stars: make(map[string]map[string]int),
	}
}

// RegisterUser adds userID to the known set and overwrites the display name
// when one is supplied (last-write-wins). Empty userID is a no-op; callers
// validate presence before recording.
func (s *StarStore) RegisterUser(userID, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(userID, displayName)
}

func (s *StarStore) registerLocked(userID, displayName string) {
	if userID == "" {
		return
	}
	if _, known := s.stars[userID]; !known {
		s.order = append(s.order, userID)
		s.stars[userID] = make(map[string]int)
		s.dirty.Store(true)
	}
	if displayName != "" && s.names[userID] != displayName {
		s.names[userID] = displayName
		s.dirty.Store(true)
	}
}

// IncrementStar bumps the count for (userID, dayKey) by one and returns the
// post-increment value. The increment and read happen under a single lock
// acquisition, never as a read-modify-write from the caller. An empty userID
// is a no-op returning 0, mirroring RegisterUser.
func (s *StarStore) IncrementStar(userID, dayKey string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registerLocked(userID, "")
	count := s.stars[userID][dayKey] + 1
	s.stars[userID][dayKey] = count
	s.dirty.Store(true)
	return count, nil
}

// GetUserDayCounts returns a copy of the user's full history. Unknown users
// yield an empty map; absent days implicitly count zero.
func (s *StarStore) GetUserDayCounts(userID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]int, len(s.stars[userID]))
	for day, count := range s.stars[userID] {
		result[day] = count
	}
	return result, nil
}

// ListUsers returns known user IDs in registration order.
func (s *StarStore) ListUsers() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, len(s.order))
	copy(users, s.order)
	return users, nil
}

func (s *StarStore) GetDisplayNames() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]string, len(s.names))
	for id, name := range s.names {
		result[id] = name
	}
	return result, nil
}

func (s *StarStore) CountUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *StarStore) CountStars() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, days := range s.stars {
		for _, count := range days {
			total += count
		}
	}
	return total
}

func (s *StarStore) Snapshot() *Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storage := &Storage{Users: make([]*UserSnapshot, 0, len(s.order))}
	for _, id := range s.order {
		days := make(map[string]int, len(s.stars[id]))
		for day, count := range s.stars[id] {
			days[day] = count
		}
		storage.Users = append(storage.Users, &UserSnapshot{
			ID:   id,
			Name: s.names[id],
			Days: days,
		})
	}
	return storage
}

func (s *StarStore) PutSnapshot(storage *Storage) {
	if storage == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = make([]string, 0, len(storage.Users))
	s.names = make(map[string]string, len(storage.Users))
	s.stars = make(map[string]map[string]int, len(storage.Users))
	for _, u := range storage.Users {
		if u == nil || u.ID == "" {
			continue
		}
		if _, dup := s.stars[u.ID]; dup {
			continue
		}
		s.order = append(s.order, u.ID)
		if u.Name != "" {
			s.names[u.ID] = u.Name
		}
		days := make(map[string]int, len(u.Days))
		for day, count := range u.Days {
			if count > 0 {
				days[day] = count
			}
		}
		s.stars[u.ID] = days
	}
	s.dirty.Store(false)
}

// PruneBefore drops every day bucket strictly older than dayKey and returns
// the number of removed buckets. Day keys sort lexicographically by date.
func (s *StarStore) PruneBefore(dayKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, days := range s.stars {
		for day := range days {
			if day < dayKey {
				delete(days, day)
				removed++
			}
		}
	}
	if removed > 0 {
		s.dirty.Store(true)
	}
	return removed
}

// Dirty reports whether the store changed since the last snapshot load or
// ClearDirty call. The persistence scheduler uses it to skip clean saves.
func (s *StarStore) Dirty() bool {
	return s.dirty.Load()
}

func (s *StarStore) ClearDirty() {
	s.dirty.Store(false)
}
