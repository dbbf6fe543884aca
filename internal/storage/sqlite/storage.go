// Package sqlite stores groups and players in relational tables.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
)

//go:embed schema.sql
var schema string

const playerColumns = `id, user_id, group_slug, name, company, avatar_url, pin, status, whammed_at, wham_reason, created_at`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Group operations

func (s *Storage) CreateGroup(ctx context.Context, group *model.Group) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO groups (slug, id, name, password_hash, creator_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		group.Slug, group.ID, group.Name, group.PasswordHash, group.CreatorID, group.CreatedAt.UTC())
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return storage.ErrSlugTaken
	}
	return err
}

func (s *Storage) SaveGroup(ctx context.Context, group *model.Group) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO groups (slug, id, name, password_hash, creator_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			password_hash = excluded.password_hash,
			creator_id = excluded.creator_id,
			created_at = excluded.created_at`,
		group.Slug, group.ID, group.Name, group.PasswordHash, group.CreatorID, group.CreatedAt.UTC())
	return err
}

func (s *Storage) GetGroup(ctx context.Context, slug model.GroupSlug) (*model.Group, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT slug, id, name, password_hash, creator_id, created_at FROM groups WHERE slug = ?`, slug)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGroupNotFound
	}
	return group, err
}

func (s *Storage) ListGroups(ctx context.Context) ([]*model.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, id, name, password_hash, creator_id, created_at FROM groups ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []*model.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	var whammedAt sql.NullTime
	if player.WhammedAt != nil {
		whammedAt = sql.NullTime{Time: player.WhammedAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`, recovery_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			group_slug = excluded.group_slug,
			name = excluded.name,
			company = excluded.company,
			avatar_url = excluded.avatar_url,
			pin = excluded.pin,
			status = excluded.status,
			whammed_at = excluded.whammed_at,
			wham_reason = excluded.wham_reason,
			created_at = excluded.created_at,
			recovery_key = excluded.recovery_key`,
		player.ID, player.UserID, player.GroupSlug, player.Name, player.Company, player.AvatarURL,
		player.PIN, player.Status, whammedAt, player.WhamReason, player.CreatedAt.UTC(),
		storage.RecoveryKey(player.Name, player.PIN))
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	return player, err
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	return err
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players`)
}

func (s *Storage) ListPlayersByGroup(ctx context.Context, slug model.GroupSlug) ([]*model.Player, error) {
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE group_slug = ?`, slug)
}

func (s *Storage) ListPlayersByUser(ctx context.Context, userID model.UserID) ([]*model.Player, error) {
	if userID == "" {
		return []*model.Player{}, nil
	}
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE user_id = ?`, userID)
}

func (s *Storage) FindPlayersByRecovery(ctx context.Context, name, pin string) ([]*model.Player, error) {
	key := storage.RecoveryKey(name, pin)
	if key == "" {
		return []*model.Player{}, nil
	}
	return s.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE recovery_key = ?`, key)
}

func (s *Storage) queryPlayers(ctx context.Context, query string, args ...any) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(row scanner) (*model.Group, error) {
	var group model.Group
	err := row.Scan(&group.Slug, &group.ID, &group.Name, &group.PasswordHash, &group.CreatorID, &group.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func scanPlayer(row scanner) (*model.Player, error) {
	var (
		player    model.Player
		whammedAt sql.NullTime
	)
	err := row.Scan(&player.ID, &player.UserID, &player.GroupSlug, &player.Name, &player.Company,
		&player.AvatarURL, &player.PIN, &player.Status, &whammedAt, &player.WhamReason, &player.CreatedAt)
	if err != nil {
		return nil, err
	}
	if whammedAt.Valid {
		t := whammedAt.Time
		player.WhammedAt = &t
	}
	return &player, nil
}
