package main

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Todo is one item of the list.
type Todo struct {
	ID        string
	Title     string
	Done      bool
	CreatedAt time.Time
}

// Store is an in-memory todo store.
type Store struct {
	mu     sync.RWMutex
	todos  map[string]*Todo
	nextID int
}

// NewStore creates a new store with sample data.
func NewStore() *Store {
	s := &Store{
		todos:  make(map[string]*Todo),
		nextID: 1,
	}

	s.Add("Buy groceries")
	s.Add("Review PR #123")
	s.Add("Write documentation")

	return s
}

// Add creates a new todo and returns its ID.
func (s *Store) Add(title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("todo-%d", s.nextID)
	s.nextID++
	s.todos[id] = &Todo{ID: id, Title: title, CreatedAt: time.Now()}
	return id
}

// Get returns a copy of a todo by ID.
func (s *Store) Get(id string) (Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok {
		return Todo{}, false
	}
	return *t, true
}

// Toggle flips the done state of a todo.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return false
	}
	t.Done = !t.Done
	return true
}

// Delete removes a todo by ID.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return false
	}
	delete(s.todos, id)
	return true
}

// List returns the todos, newest first. A non-empty status of "done" or
// "pending" filters them.
func (s *Store) List(status string) []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Todo
	for _, t := range s.todos {
		if status == "done" && !t.Done || status == "pending" && t.Done {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
