package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/character-api/internal/config"
	"github.com/robalobadob/character-api/internal/store"
)

// storeSet is the backend chosen by STORE_DRIVER plus whatever must be
// released on shutdown.
type storeSet struct {
	tokens     store.TokenStore
	users      store.UserStore
	characters store.CharacterStore
	closers    []func() error
}

func (s *storeSet) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}

// openStores builds the stores for cfg. When REDIS_URL is set the revoked
// token set lives in Redis regardless of the driver.
func openStores(ctx context.Context, cfg config.Config) (*storeSet, error) {
	s := &storeSet{}

	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := store.OpenSQLite(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		chars, err := store.NewSQLiteCharacters(ctx, db)
		if err != nil {
			s.close()
			return nil, err
		}
		s.tokens = store.NewSQLiteTokens(db)
		s.users = store.NewSQLiteUsers(db)
		s.characters = chars
		log.Info().Str("path", cfg.DatabasePath).Msg("sqlite store ready")
	case config.DriverMemory:
		s.tokens = store.NewMemoryTokens()
		s.users = store.NewMemoryUsers()
		s.characters = store.NewMemoryCharacters()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisURL != "" {
		rt, err := store.NewRedisTokens(ctx, cfg.RedisURL, cfg.RedisRevokedKey)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, rt.Close)
		s.tokens = rt
		log.Info().Str("key", cfg.RedisRevokedKey).Msg("revoked tokens kept in redis")
	}
	return s, nil
}
