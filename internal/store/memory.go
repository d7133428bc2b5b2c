// internal/store/memory.go
//
// In-memory implementations of TokenStore, UserStore and CharacterStore.
// This is the default backend: state lives for the lifetime of the process
// and is lost on restart.
//
// Characteristics:
//   - Maps keyed by token / normalized email / character id.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Characters keep a separate key slice so List returns insertion order.

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/character-api/internal/crypto"
	"github.com/robalobadob/character-api/internal/errs"
	"github.com/robalobadob/character-api/internal/model"
)

// ----------------------------- revoked tokens ------------------------------

// MemoryTokens is a set of revoked tokens.
type MemoryTokens struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewMemoryTokens constructs an empty revocation set.
func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{revoked: make(map[string]struct{})}
}

func (m *MemoryTokens) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = struct{}{}
	return nil
}

func (m *MemoryTokens) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.revoked[token]
	return ok, nil
}

// --------------------------------- users -----------------------------------

// MemoryUsers stores users keyed by normalized email.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewMemoryUsers constructs an empty user store.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]*model.User)}
}

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *MemoryUsers) Create(_ context.Context, email, password, role string) (model.User, error) {
	key := NormalizeEmail(email)

	m.mu.RLock()
	_, taken := m.users[key]
	m.mu.RUnlock()
	if taken {
		return model.User{}, fmt.Errorf("user %s: %w", key, errs.ErrConflict)
	}

	// Hash outside the lock; bcrypt is slow on purpose.
	h, err := crypto.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.users[key]; taken {
		return model.User{}, fmt.Errorf("user %s: %w", key, errs.ErrConflict)
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        key,
		PasswordHash: h,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[key] = u
	return *u, nil
}

func (m *MemoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[NormalizeEmail(email)]
	if !ok {
		return model.User{}, fmt.Errorf("user %s: %w", email, errs.ErrNotFound)
	}
	return *u, nil
}

func (m *MemoryUsers) SetRefreshToken(_ context.Context, email, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[NormalizeEmail(email)]
	if !ok {
		return false, nil
	}
	u.RefreshToken = token
	return true, nil
}

// ------------------------------- characters --------------------------------

// MemoryCharacters stores characters keyed by id.
type MemoryCharacters struct {
	mu    sync.RWMutex
	byID  map[int64]model.Character
	order []int64 // insertion order; deleted ids are removed
	ids   *IDGenerator
}

// NewMemoryCharacters constructs an empty character store.
func NewMemoryCharacters() *MemoryCharacters {
	return &MemoryCharacters{
		byID: make(map[int64]model.Character),
		ids:  NewIDGenerator(),
	}
}

func (m *MemoryCharacters) List(_ context.Context) ([]model.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Character, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *MemoryCharacters) Get(_ context.Context, id int64) (model.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byID[id]
	if !ok {
		return model.Character{}, fmt.Errorf("character %d: %w", id, errs.ErrNotFound)
	}
	return c, nil
}

func (m *MemoryCharacters) Create(_ context.Context, c model.Character) (model.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID != 0 {
		if _, exists := m.byID[c.ID]; exists {
			log.Error().Int64("id", c.ID).Msg("character already exists")
			return c, fmt.Errorf("character %d: %w", c.ID, errs.ErrConflict)
		}
	}
	c.ID = m.ids.Next()
	m.byID[c.ID] = c
	m.order = append(m.order, c.ID)
	return c, nil
}

func (m *MemoryCharacters) Update(_ context.Context, id int64, c model.Character) (model.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		log.Error().Int64("id", id).Msg("character not found for update")
		return model.Character{}, fmt.Errorf("character %d: %w", id, errs.ErrNotFound)
	}
	c.ID = id
	m.byID[id] = c
	return c, nil
}

func (m *MemoryCharacters) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		log.Error().Int64("id", id).Msg("character not found for delete")
		return fmt.Errorf("character %d: %w", id, errs.ErrNotFound)
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Compile-time interface checks.
var (
	_ TokenStore     = (*MemoryTokens)(nil)
	_ UserStore      = (*MemoryUsers)(nil)
	_ CharacterStore = (*MemoryCharacters)(nil)
)
