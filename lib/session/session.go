// Package session provides a small cookie-backed session: a mapping from
// keys to lists of values, persisted as a signed (or encrypted) msgpack
// cookie between requests.
package session

import (
	"context"
	"sync"
)

// Session holds per-visitor values. Each key maps to an ordered list so
// callers can append without reading first.
//
// A Session is safe for concurrent use by the handlers of one request.
type Session struct {
	mu       sync.Mutex
	values   map[string][]any
	modified bool
}

// New returns an empty session.
func New() *Session {
	return &Session{values: map[string][]any{}}
}

// Get returns a copy of the list stored under key.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return append([]any(nil), v...), true
}

// Append adds value to the end of the list stored under key.
func (s *Session) Append(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append(s.values[key], value)
	s.modified = true
	return nil
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Session) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.modified = true
	}
	return nil
}

// Len returns the number of keys in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// Modified reports whether the session changed since it was loaded.
func (s *Session) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

func (s *Session) snapshot() map[string][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]any, len(s.values))
	for k, v := range s.values {
		out[k] = append([]any(nil), v...)
	}
	return out
}

func (s *Session) markSaved() {
	s.mu.Lock()
	s.modified = false
	s.mu.Unlock()
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Store.Middleware, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
