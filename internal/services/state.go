package services

import (
	"sort"
	"sync"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
)

const subscriberBuffer = 64

// stateStore keeps the refresh state of every (domain, address) and fans
// changes out to subscribers. A subscriber that falls behind misses updates
// rather than blocking refreshes.
type stateStore struct {
	mu          sync.RWMutex
	states      map[string]types.State
	subscribers map[int]chan types.State
	nextID      int
}

func newStateStore() *stateStore {
	s := &stateStore{
		states:      make(map[string]types.State),
		subscribers: make(map[int]chan types.State),
	}
	for _, d := range []types.Domain{types.DomainStaking, types.DomainToken, types.DomainVault} {
		st := types.State{Domain: d, Status: types.StatusIdle}
		s.states[st.Key()] = st
	}
	return s
}

func (s *stateStore) set(domain types.Domain, address string, status types.Status, errMsg string, now time.Time) {
	st := types.State{
		Domain:    domain,
		Address:   address,
		Status:    status,
		Loading:   status == types.StatusLoading,
		Error:     errMsg,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[st.Key()] = st
	for _, ch := range s.subscribers {
		select {
		case ch <- st:
		default:
		}
	}
}

func (s *stateStore) get(domain types.Domain, address string) types.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.states[types.StateKey(domain, address)]; ok {
		return st
	}
	return types.State{Domain: domain, Address: address, Status: types.StatusIdle}
}

func (s *stateStore) all() []types.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}

func (s *stateStore) subscribe() (<-chan types.State, func()) {
	ch := make(chan types.State, subscriberBuffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// State returns the current state of domain, scoped to address when given.
func (s *Service) State(domain types.Domain, address string) types.State {
	return s.states.get(domain, address)
}

// States returns every known state ordered by key.
func (s *Service) States() []types.State {
	return s.states.all()
}

// Subscribe streams state changes until the returned cancel func is called.
func (s *Service) Subscribe() (<-chan types.State, func()) {
	return s.states.subscribe()
}
