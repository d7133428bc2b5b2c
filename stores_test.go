package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/character-api/internal/config"
	"github.com/robalobadob/character-api/internal/model"
	"github.com/robalobadob/character-api/internal/store"
)

func TestOpenStores_Memory(t *testing.T) {
	s, err := openStores(context.Background(), config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	defer s.close()

	assert.IsType(t, &store.MemoryTokens{}, s.tokens)
	assert.IsType(t, &store.MemoryUsers{}, s.users)
	assert.IsType(t, &store.MemoryCharacters{}, s.characters)
	assert.Empty(t, s.closers)
}

func TestOpenStores_SQLitePersists(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		StoreDriver:  config.DriverSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "nested", "app.db"),
	}

	s, err := openStores(ctx, cfg)
	require.NoError(t, err)
	c, err := s.characters.Create(ctx, model.Character{Name: "Ann", LastName: "Lee"})
	require.NoError(t, err)
	require.NoError(t, s.tokens.Revoke(ctx, "tok"))
	s.close()

	s, err = openStores(ctx, cfg)
	require.NoError(t, err)
	defer s.close()

	got, err := s.characters.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
	revoked, err := s.tokens.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	next, err := s.characters.Create(ctx, model.Character{Name: "Bob", LastName: "Ray"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, c.ID)
}

func TestOpenStores_BadRedisURL(t *testing.T) {
	_, err := openStores(context.Background(), config.Config{
		StoreDriver: config.DriverMemory,
		RedisURL:    "not-a-redis-url",
	})
	require.Error(t, err)
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	_, err := openStores(context.Background(), config.Config{StoreDriver: "postgres"})
	require.Error(t, err)
}
