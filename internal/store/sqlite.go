// internal/store/sqlite.go
//
// SQLite-backed implementations of TokenStore, UserStore and CharacterStore.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//   - Mapping unique-constraint violations to errs.ErrConflict and missing rows
//     to errs.ErrNotFound.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/character-api/assets"
	"github.com/robalobadob/character-api/internal/crypto"
	"github.com/robalobadob/character-api/internal/errs"
	"github.com/robalobadob/character-api/internal/model"
)

// MemoryDSN opens a private in-memory SQLite database (tests, demos).
const MemoryDSN = ":memory:"

/**
 * OpenSQLite opens (and creates if missing) a SQLite database file and
 * applies the embedded migrations.
 *
 * - Ensures parent directory exists for relative DSNs (e.g. ./data/app.db).
 * - Configures busy timeout and WAL journaling mode.
 * - An in-memory DSN is pinned to a single connection so every query sees
 *   the same database.
 */
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != MemoryDSN {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if dsn == MemoryDSN {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(ctx, db, assets.Migrations, "migrations"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

/**
 * migrate applies *.sql files found under dir in fsys.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each file in lexical order inside its own transaction.
 * - Skips files already recorded.
 */
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(fsys, path.Join(dir, f))
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE/PRIMARY KEY failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// ----------------------------- revoked tokens ------------------------------

// SQLiteTokens persists revoked tokens in revoked_tokens.
type SQLiteTokens struct{ db *sql.DB }

func NewSQLiteTokens(db *sql.DB) *SQLiteTokens { return &SQLiteTokens{db: db} }

func (s *SQLiteTokens) Revoke(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO revoked_tokens(token) VALUES (?)`, token)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *SQLiteTokens) IsRevoked(ctx context.Context, token string) (bool, error) {
	var cnt int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM revoked_tokens WHERE token=?`, token,
	).Scan(&cnt); err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return cnt > 0, nil
}

// --------------------------------- users -----------------------------------

// SQLiteUsers persists users in the users table.
type SQLiteUsers struct{ db *sql.DB }

func NewSQLiteUsers(db *sql.DB) *SQLiteUsers { return &SQLiteUsers{db: db} }

func (s *SQLiteUsers) Create(ctx context.Context, email, password, role string) (model.User, error) {
	key := NormalizeEmail(email)
	if _, err := s.FindByEmail(ctx, key); err == nil {
		return model.User{}, fmt.Errorf("user %s: %w", key, errs.ErrConflict)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.User{}, err
	}

	h, err := crypto.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		ID:           uuid.NewString(),
		Email:        key,
		PasswordHash: h,
		Role:         role,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, created_at) VALUES (?,?,?,?,?)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("user %s: %w", key, errs.ErrConflict)
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQLiteUsers) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var (
		u       model.User
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, refresh_token, created_at FROM users WHERE email=?`,
		NormalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.RefreshToken, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", email, errs.ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return u, nil
}

func (s *SQLiteUsers) SetRefreshToken(ctx context.Context, email, token string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET refresh_token=? WHERE email=?`, token, NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("set refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ------------------------------- characters --------------------------------

// SQLiteCharacters persists characters in the characters table.
type SQLiteCharacters struct {
	db  *sql.DB
	ids *IDGenerator
}

// NewSQLiteCharacters seeds the id generator past the largest stored id.
func NewSQLiteCharacters(ctx context.Context, db *sql.DB) (*SQLiteCharacters, error) {
	var maxID sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(id) FROM characters`).Scan(&maxID); err != nil {
		return nil, fmt.Errorf("load max character id: %w", err)
	}
	ids := NewIDGenerator()
	if maxID.Valid {
		ids.Observe(maxID.Int64)
	}
	return &SQLiteCharacters{db: db, ids: ids}, nil
}

func (s *SQLiteCharacters) List(ctx context.Context) ([]model.Character, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, last_name FROM characters ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	out := []model.Character{}
	for rows.Next() {
		var c model.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.LastName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteCharacters) Get(ctx context.Context, id int64) (model.Character, error) {
	var c model.Character
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, last_name FROM characters WHERE id=?`, id,
	).Scan(&c.ID, &c.Name, &c.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Character{}, fmt.Errorf("character %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return model.Character{}, fmt.Errorf("get character: %w", err)
	}
	return c, nil
}

func (s *SQLiteCharacters) Create(ctx context.Context, c model.Character) (model.Character, error) {
	if c.ID != 0 {
		_, err := s.Get(ctx, c.ID)
		if err == nil {
			log.Error().Int64("id", c.ID).Msg("character already exists")
			return c, fmt.Errorf("character %d: %w", c.ID, errs.ErrConflict)
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return c, err
		}
	}

	out := c
	out.ID = s.ids.Next()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO characters (id, name, last_name) VALUES (?,?,?)`,
		out.ID, out.Name, out.LastName,
	); err != nil {
		if isUniqueViolation(err) {
			return c, fmt.Errorf("character %d: %w", out.ID, errs.ErrConflict)
		}
		return c, fmt.Errorf("insert character: %w", err)
	}
	return out, nil
}

func (s *SQLiteCharacters) Update(ctx context.Context, id int64, c model.Character) (model.Character, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE characters SET name=?, last_name=? WHERE id=?`, c.Name, c.LastName, id)
	if err != nil {
		return model.Character{}, fmt.Errorf("update character: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Character{}, err
	} else if n == 0 {
		log.Error().Int64("id", id).Msg("character not found for update")
		return model.Character{}, fmt.Errorf("character %d: %w", id, errs.ErrNotFound)
	}
	c.ID = id
	return c, nil
}

func (s *SQLiteCharacters) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		log.Error().Int64("id", id).Msg("character not found for delete")
		return fmt.Errorf("character %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

var (
	_ TokenStore     = (*SQLiteTokens)(nil)
	_ UserStore      = (*SQLiteUsers)(nil)
	_ CharacterStore = (*SQLiteCharacters)(nil)
)
