package bot

import "sync"

// stateStore tracks the per-chat counter of consecutive messages without a
// link, used to escalate and then stop the nudge replies. Handlers run in
// parallel goroutines, so access is mutex-guarded.
type stateStore struct {
	mu       sync.Mutex
	counters map[int64]int
}

func newStateStore() *stateStore {
	return &stateStore{counters: make(map[int64]int)}
}

// bump increments the chat's counter and returns the new value.
func (s *stateStore) bump(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[chatID]++

	return s.counters[chatID]
}

// reset drops the chat's counter entirely so the map does not accumulate
// zero entries.
func (s *stateStore) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, chatID)
}

// chats reports how many chats currently hold a non-zero counter.
func (s *stateStore) chats() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.counters)
}
