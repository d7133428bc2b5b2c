package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/character-api/internal/errs"
	"github.com/robalobadob/character-api/internal/model"
)

// backend bundles one implementation of each store for the shared suite.
type backend struct {
	tokens     TokenStore
	users      UserStore
	characters CharacterStore
}

func memoryBackend(t *testing.T) backend {
	t.Helper()
	return backend{
		tokens:     NewMemoryTokens(),
		users:      NewMemoryUsers(),
		characters: NewMemoryCharacters(),
	}
}

func sqliteBackend(t *testing.T) backend {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	chars, err := NewSQLiteCharacters(ctx, db)
	require.NoError(t, err)
	return backend{
		tokens:     NewSQLiteTokens(db),
		users:      NewSQLiteUsers(db),
		characters: chars,
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, b backend)) {
	t.Helper()
	for name, mk := range map[string]func(*testing.T) backend{
		"memory": memoryBackend,
		"sqlite": sqliteBackend,
	} {
		mk := mk
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn(t, mk(t))
		})
	}
}

func TestTokens_RevokeIsPermanentAndIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		revoked, err := b.tokens.IsRevoked(ctx, "tok-a")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, b.tokens.Revoke(ctx, "tok-a"))
		require.NoError(t, b.tokens.Revoke(ctx, "tok-a"))

		for i := 0; i < 3; i++ {
			revoked, err = b.tokens.IsRevoked(ctx, "tok-a")
			require.NoError(t, err)
			assert.True(t, revoked)
		}

		revoked, err = b.tokens.IsRevoked(ctx, "tok-b")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestUsers_CreateFindAndConflict(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		u, err := b.users.Create(ctx, "Ann@Example.com", "secret1", model.RoleUser)
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "ann@example.com", u.Email)
		assert.Equal(t, model.RoleUser, u.Role)
		assert.NotEqual(t, "secret1", u.PasswordHash)

		_, err = b.users.Create(ctx, "ann@example.com", "other-pw", model.RoleAdmin)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrConflict)

		found, err := b.users.FindByEmail(ctx, " ANN@example.com ")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
		assert.Equal(t, model.RoleUser, found.Role)
		assert.True(t, ValidatePassword(found, "secret1"))
		assert.False(t, ValidatePassword(found, "secret2"))

		_, err = b.users.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestUsers_SetRefreshToken(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		_, err := b.users.Create(ctx, "lee@example.com", "secret1", model.RoleUser)
		require.NoError(t, err)

		ok, err := b.users.SetRefreshToken(ctx, "lee@example.com", "refresh-1")
		require.NoError(t, err)
		assert.True(t, ok)

		u, err := b.users.FindByEmail(ctx, "lee@example.com")
		require.NoError(t, err)
		assert.Equal(t, "refresh-1", u.RefreshToken)

		ok, err = b.users.SetRefreshToken(ctx, "lee@example.com", "")
		require.NoError(t, err)
		assert.True(t, ok)
		u, err = b.users.FindByEmail(ctx, "lee@example.com")
		require.NoError(t, err)
		assert.Empty(t, u.RefreshToken)

		ok, err = b.users.SetRefreshToken(ctx, "ghost@example.com", "x")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCharacters_Lifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		created, err := b.characters.Create(ctx, model.Character{Name: "Ann", LastName: "Lee"})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Ann", created.Name)
		assert.Equal(t, "Lee", created.LastName)

		got, err := b.characters.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		require.NoError(t, b.characters.Delete(ctx, created.ID))
		_, err = b.characters.Get(ctx, created.ID)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestCharacters_CreateAssignsUniqueIDsInOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		seen := map[int64]bool{}
		var want []int64
		for i := 0; i < 20; i++ {
			c, err := b.characters.Create(ctx, model.Character{Name: "Name", LastName: "Last"})
			require.NoError(t, err)
			require.False(t, seen[c.ID], "duplicate id %d", c.ID)
			seen[c.ID] = true
			want = append(want, c.ID)
		}

		list, err := b.characters.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, len(want))
		for i, c := range list {
			assert.Equal(t, want[i], c.ID)
		}
	})
}

func TestCharacters_CreateWithTakenIDLeavesStoreUnchanged(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		orig, err := b.characters.Create(ctx, model.Character{Name: "Ann", LastName: "Lee"})
		require.NoError(t, err)

		input := model.Character{ID: orig.ID, Name: "Bob", LastName: "Ray"}
		out, err := b.characters.Create(ctx, input)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, input, out)

		list, err := b.characters.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, orig, list[0])
	})
}

func TestCharacters_CreateWithUnknownIDGetsFreshID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		out, err := b.characters.Create(ctx, model.Character{ID: 42, Name: "Ann", LastName: "Lee"})
		require.NoError(t, err)
		assert.NotEqual(t, int64(42), out.ID)

		_, err = b.characters.Get(ctx, 42)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestCharacters_UpdateReplacesWholesale(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		c, err := b.characters.Create(ctx, model.Character{Name: "Ann", LastName: "Lee"})
		require.NoError(t, err)

		updated, err := b.characters.Update(ctx, c.ID, model.Character{ID: 999, Name: "Anna", LastName: "Leeds"})
		require.NoError(t, err)
		assert.Equal(t, model.Character{ID: c.ID, Name: "Anna", LastName: "Leeds"}, updated)

		got, err := b.characters.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})
}

func TestCharacters_MissingIDsLeaveStoreUnmodified(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := context.Background()

		c, err := b.characters.Create(ctx, model.Character{Name: "Ann", LastName: "Lee"})
		require.NoError(t, err)

		_, err = b.characters.Update(ctx, c.ID+1000, model.Character{Name: "Xxx", LastName: "Yyy"})
		assert.ErrorIs(t, err, errs.ErrNotFound)

		err = b.characters.Delete(ctx, c.ID+1000)
		assert.ErrorIs(t, err, errs.ErrNotFound)

		list, err := b.characters.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Character{c}, list)
	})
}

func TestCharacters_ListEmptyIsNotNil(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		list, err := b.characters.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}
