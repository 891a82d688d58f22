package applications

import "sync"

// Overrides maps application IDs to explicitly chosen stages.
type Overrides map[int64]Stage

// OverrideStore keeps per-session stage overrides in process memory. An
// override is recorded only after a transition the upstream API accepted,
// so the review screen stays stable even when the server echoes a legacy
// status back. Restarting the console loses them, which is fine: they exist
// for immediate UI consistency, not as a source of truth.
type OverrideStore struct {
	mu        sync.Mutex
	bySession map[string]Overrides
}

// NewOverrideStore constructs an empty OverrideStore.
func NewOverrideStore() *OverrideStore {
	return &OverrideStore{bySession: make(map[string]Overrides)}
}

// Snapshot returns a copy of the session's override table.
func (s *OverrideStore) Snapshot(sessionID string) Overrides {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.bySession[sessionID]
	copied := make(Overrides, len(current))
	for id, stage := range current {
		copied[id] = stage
	}
	return copied
}

// Set records an override for one application in the session.
func (s *OverrideStore) Set(sessionID string, applicationID int64, stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.bySession[sessionID]
	if !ok {
		current = make(Overrides)
		s.bySession[sessionID] = current
	}
	current[applicationID] = stage
}

// Drop removes every override recorded for the session.
func (s *OverrideStore) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bySession, sessionID)
}
