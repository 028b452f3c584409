package controllers

import "sync"

// RemovalSelections holds the table picked for removal in each area until the user confirms.
// It lives only as long as the process and is never persisted.
type RemovalSelections struct {
	mu      sync.Mutex
	pending map[string]string
}

func NewRemovalSelections() *RemovalSelections {
	return &RemovalSelections{pending: make(map[string]string)}
}

// Select records tableID for area; an empty id clears the selection.
func (s *RemovalSelections) Select(area, tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tableID == "" {
		delete(s.pending, area)
		return
	}
	s.pending[area] = tableID
}

func (s *RemovalSelections) Pending(area string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[area]
}

// Take returns the pending id for area and clears it.
func (s *RemovalSelections) Take(area string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.pending[area]
	delete(s.pending, area)
	return id, ok
}
