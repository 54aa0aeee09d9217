// Package comments holds product reviews left by customers.
package comments

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthor       = errors.New("comment belongs to another user")
	ErrEmptyContent    = errors.New("comment content cannot be empty")
)

// Comment is one customer comment on a product. UserName is a display
// snapshot taken at write time.
type Comment struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	Edited    bool      `json:"edited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the comment persistence surface.
type Store interface {
	ListByProduct(ctx context.Context, productID string) ([]Comment, error)
	Get(ctx context.Context, id string) (*Comment, error)
	Create(ctx context.Context, c *Comment) error
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory comment store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	comments map[string]Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[string]Comment)}
}

func (s *MemoryStore) ListByProduct(ctx context.Context, productID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Comment, 0)
	for _, c := range s.comments {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrCommentNotFound
	}
	return &c, nil
}

func (s *MemoryStore) Create(ctx context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = *c
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[c.ID]; !ok {
		return ErrCommentNotFound
	}
	s.comments[c.ID] = *c
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}
