// Package descstore holds full-length media descriptions keyed by
// (chat, media) until the user reveals them via a callback button.
//
// Entries have no TTL: they live until explicitly cleared or the process
// exits. This is a deliberate, known growth risk for chats that never press
// the reveal button.
package descstore

import "sync"

// Store is a process-wide description cache. The zero value is not usable;
// construct with New.
type Store struct {
	mu    sync.RWMutex
	chats map[int64]map[string]string
}

func New() *Store {
	return &Store{chats: make(map[int64]map[string]string)}
}

// Put stores text under (chatID, mediaID), overwriting any existing entry.
// Empty text is ignored so callers can pass descriptors through unchecked.
func (s *Store) Put(chatID int64, mediaID, text string) {
	if mediaID == "" || text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.chats[chatID]
	if !ok {
		entries = make(map[string]string)
		s.chats[chatID] = entries
	}

	entries[mediaID] = text
}

// Get returns the stored text and whether it exists. Pure lookup.
func (s *Store) Get(chatID int64, mediaID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.chats[chatID][mediaID]

	return text, ok
}

// Clear removes the entry. When the chat's entry set becomes empty the
// outer key is removed too. Clearing a missing key is a no-op.
func (s *Store) Clear(chatID int64, mediaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.chats[chatID]
	if !ok {
		return
	}

	delete(entries, mediaID)

	if len(entries) == 0 {
		delete(s.chats, chatID)
	}
}

// Len reports the total number of stored descriptions across all chats.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entries := range s.chats {
		n += len(entries)
	}

	return n
}
