package comments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service enforces comment ownership and validation on top of a Store. Only
// the author of a comment may edit or delete it.
type Service struct {
	store Store
	clock func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return NewServiceWithClock(store, time.Now, uuid.NewString)
}

// NewServiceWithClock injects the clock and id generator for tests.
func NewServiceWithClock(store Store, clock func() time.Time, newID func() string) *Service {
	return &Service{store: store, clock: clock, newID: newID}
}

// ListByProduct returns a product's comments, newest first.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Comment, error) {
	return s.store.ListByProduct(ctx, productID)
}

// Add records a new comment. Blank content is rejected.
func (s *Service) Add(ctx context.Context, productID, userID, userName, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	now := s.clock()
	c := &Comment{
		ID:        s.newID(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces a comment's content and marks it edited. Callers that are
// not the author get ErrNotAuthor.
func (s *Service) Update(ctx context.Context, commentID, userID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c, err := s.store.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrNotAuthor
	}

	c.Content = content
	c.Edited = true
	c.UpdatedAt = s.clock()
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a comment. Callers that are not the author get ErrNotAuthor.
func (s *Service) Delete(ctx context.Context, commentID, userID string) error {
	c, err := s.store.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotAuthor
	}
	return s.store.Delete(ctx, commentID)
}
