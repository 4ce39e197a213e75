package llm

import "sync"

// Session holds zero or one active generative backend. Reads vastly
// outnumber swaps, so access goes through an RWMutex.
type Session struct {
	mu   sync.RWMutex
	gen  Generator
	name string
}

// NewSession returns a session with no backend (retrieval-only mode).
func NewSession() *Session {
	return &Session{}
}

// Enable builds a backend and makes it active. On failure the previous state
// is left untouched.
func (s *Session) Enable(providerType string, opts BackendOptions) error {
	gen, name, err := BuildGenerator(providerType, opts)
	if err != nil {
		return err
	}
	s.Use(gen, name)
	return nil
}

// Use installs an already-constructed generator. A nil gen disables.
func (s *Session) Use(gen Generator, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen = gen
	s.name = name
	if gen == nil {
		s.name = ""
	}
}

// Disable drops the active backend.
func (s *Session) Disable() {
	s.Use(nil, "")
}

// Active reports whether a backend is configured.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen != nil
}

// Name returns the active backend's display name, or "" when inactive.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Current returns the active generator, or nil.
func (s *Session) Current() Generator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

