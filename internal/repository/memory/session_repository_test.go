package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/pkg/store"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository()

	repo.Save(&store.Session{
		ID:          "abc",
		LastQuery:   "tell me about TaxoCapsNet",
		LastProject: "TaxoCapsNet",
		Mode:        store.ModeEngineer,
	})

	got, found := repo.Get("abc")
	require.True(t, found)
	assert.Equal(t, "TaxoCapsNet", got.LastProject)
	assert.Equal(t, store.ModeEngineer, got.Mode)
}

func TestSessionRepositoryMissAndDelete(t *testing.T) {
	repo := NewSessionRepository()

	_, found := repo.Get("missing")
	assert.False(t, found)

	repo.Save(&store.Session{ID: "gone"})
	repo.Delete("gone")
	_, found = repo.Get("gone")
	assert.False(t, found)
}
