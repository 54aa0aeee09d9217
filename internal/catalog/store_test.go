package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *MemoryStore, id, category string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), &Product{
		ID:        id,
		Name:      "Plant " + id,
		Price:     100,
		Category:  category,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}))
}

func TestMemoryStoreGet(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "indoor", time.Now())

	p, err := s.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Plant p1", p.Name)

	_, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()
	seed(t, s, "old", "indoor", base.Add(-time.Hour))
	seed(t, s, "new", "indoor", base)

	products, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "new", products[0].ID)
	assert.Equal(t, "old", products[1].ID)
}

func TestMemoryStoreListByCategory(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "indoor", time.Now())
	seed(t, s, "p2", "outdoor", time.Now())

	indoor, err := s.ListByCategory(context.Background(), "indoor")
	require.NoError(t, err)
	require.Len(t, indoor, 1)
	assert.Equal(t, "p1", indoor[0].ID)

	none, err := s.ListByCategory(context.Background(), "aquatic")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "indoor", time.Now())

	p, err := s.Get(context.Background(), "p1")
	require.NoError(t, err)
	p.Price = 250
	require.NoError(t, s.Update(context.Background(), p))

	updated, err := s.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 250, updated.Price)

	err = s.Update(context.Background(), &Product{ID: "missing"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "indoor", time.Now())

	require.NoError(t, s.Delete(context.Background(), "p1"))
	_, err := s.Get(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, s.Delete(context.Background(), "p1"), ErrProductNotFound)
}
