package sources

import (
	"context"
	"testing"

	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct{ name string }

func (s stubAdapter) Name() string  { return s.name }
func (s stubAdapter) Label() string { return s.name + " label" }
func (s stubAdapter) Search(context.Context, string) []entities.BookSummary {
	return []entities.BookSummary{}
}
func (s stubAdapter) Details(context.Context, string) *entities.BookDetail { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry(stubAdapter{"douban"}, stubAdapter{"google"})

	assert.Equal(t, 2, r.Len())

	a, err := r.Get("google")
	require.NoError(t, err)
	assert.Equal(t, "google", a.Name())

	_, err = r.Get("calis")
	assert.ErrorIs(t, err, ErrUnknownSource)

	first, ok := r.At(1)
	require.True(t, ok)
	assert.Equal(t, "douban", first.Name())

	_, ok = r.At(0)
	assert.False(t, ok)
	_, ok = r.At(3)
	assert.False(t, ok)

	all := r.All()
	all[0] = stubAdapter{"mutated"}
	again, _ := r.At(1)
	assert.Equal(t, "douban", again.Name())
}

func TestKeyword(t *testing.T) {
	kw, ok := Keyword("  三体 ")
	assert.True(t, ok)
	assert.Equal(t, "三体", kw)

	_, ok = Keyword(" \t")
	assert.False(t, ok)
}

func TestCap(t *testing.T) {
	assert.NotNil(t, Cap(nil))
	assert.Empty(t, Cap(nil))

	many := make([]entities.BookSummary, 15)
	assert.Len(t, Cap(many), MaxResults)
}
