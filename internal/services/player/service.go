package player

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/dependencies/clock"
	"github.com/mcoot/whamageddon/internal/dependencies/random"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/storage"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// JoinRequest carries the join form. Empty profile fields are inherited from
// the user's rows in other groups.
type JoinRequest struct {
	UserID    model.UserID // empty assigns a new user id
	Name      string
	Company   string
	AvatarURL string
	PIN       string
	Password  string
}

// ProfileUpdate replaces the profile fields on every row of a user.
// A nil field is left unchanged.
type ProfileUpdate struct {
	Name      *string
	Company   *string
	AvatarURL *string
	PIN       *string
}

// Profile is a user's shared profile together with their memberships
type Profile struct {
	UserID    model.UserID
	Name      string
	Company   string
	AvatarURL string
	PIN       string
	Status    model.PlayerStatus
	WhammedAt *time.Time
	Players   []*model.Player
}

// Recovery is the result of a name+PIN lookup
type Recovery struct {
	UserID  model.UserID
	Players []*model.Player
}

// Service manages players: joining, elimination, profiles and recovery
type Service struct {
	storage storage.Storage
	groups  *group.Service
	feed    changefeed.Feed
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new player Service
func New(
	storage storage.Storage,
	groups *group.Service,
	feed changefeed.Feed,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		groups:  groups,
		feed:    feed,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// ValidatePIN accepts an empty PIN or exactly four digits
func ValidatePIN(pin string) error {
	if pin == "" || pinPattern.MatchString(pin) {
		return nil
	}
	return model.ErrInvalidPIN
}

// Join adds a player row for the user to a group
func (s *Service) Join(ctx context.Context, slug model.GroupSlug, req JoinRequest) (*model.Player, error) {
	g, err := s.storage.GetGroup(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.groups.CheckPassword(g, req.Password); err != nil {
		return nil, err
	}

	req.PIN = strings.TrimSpace(req.PIN)
	if err := ValidatePIN(req.PIN); err != nil {
		return nil, err
	}

	userID := req.UserID
	var existing []*model.Player
	if userID == "" {
		userID = model.UserID(s.random.NewID())
	} else {
		existing, err = s.storage.ListPlayersByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, p := range existing {
			if p.GroupSlug == slug {
				return nil, model.ErrAlreadyInGroup
			}
		}
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:        model.PlayerID(s.random.NewID()),
		UserID:    userID,
		GroupSlug: slug,
		Name:      strings.TrimSpace(req.Name),
		Company:   strings.TrimSpace(req.Company),
		AvatarURL: strings.TrimSpace(req.AvatarURL),
		PIN:       req.PIN,
		Status:    model.StatusAlive,
		CreatedAt: now,
	}
	inherit(player, existing)

	if player.Name == "" {
		return nil, model.ErrPlayerNameMissing
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		s.logger.Error("failed to save player",
			slog.String("group", string(slug)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("player joined",
		slog.String("group", string(slug)),
		slog.String("player_id", string(player.ID)),
		slog.Bool("returning_user", len(existing) > 0),
		slog.Bool("whammed", !player.IsAlive()))

	changefeed.Announce(ctx, s.feed, s.logger, model.Change{
		Table:     model.TablePlayers,
		Op:        model.OpInsert,
		GroupSlug: slug,
		PlayerID:  player.ID,
		UserID:    userID,
		At:        now,
	})

	return player, nil
}

// inherit fills blank profile fields from the user's other rows and carries
// over elimination, so a whammed user joins new groups already out
func inherit(player *model.Player, others []*model.Player) {
	if len(others) == 0 {
		return
	}
	model.SortByJoined(others)
	first := others[0]

	if player.Name == "" {
		player.Name = first.Name
	}
	if player.Company == "" {
		player.Company = first.Company
	}
	if player.AvatarURL == "" {
		player.AvatarURL = first.AvatarURL
	}
	if player.PIN == "" {
		player.PIN = first.PIN
	}

	for _, o := range others {
		if !o.IsAlive() && o.WhammedAt != nil {
			player.MarkWhammed(*o.WhammedAt, o.WhamReason)
			return
		}
	}
}

// Wham eliminates the player. When the row belongs to a user, every row of
// that user is eliminated. The requester must own the row or administer its
// group; rows without a user are open to anyone.
func (s *Service) Wham(ctx context.Context, id model.PlayerID, requester model.UserID, reason string) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !player.IsAlive() {
		return nil, model.ErrAlreadyWhammed
	}
	if err := s.authorizeOwnerOrAdmin(ctx, player, requester); err != nil {
		return nil, err
	}

	if player.UserID == "" {
		if err := s.whamRows(ctx, []*model.Player{player}, reason); err != nil {
			return nil, err
		}
		return player, nil
	}

	rows, err := s.storage.ListPlayersByUser(ctx, player.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.whamRows(ctx, rows, reason); err != nil {
		return nil, err
	}
	return s.storage.GetPlayer(ctx, id)
}

// WhamUser eliminates every row sharing the user identifier
func (s *Service) WhamUser(ctx context.Context, userID model.UserID, reason string) ([]*model.Player, error) {
	if userID == "" {
		return nil, model.ErrIdentityRequired
	}
	rows, err := s.storage.ListPlayersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrProfileNotFound
	}
	if err := s.whamRows(ctx, rows, reason); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) whamRows(ctx context.Context, rows []*model.Player, reason string) error {
	now := s.clock.Now()
	reason = strings.TrimSpace(reason)

	for _, p := range rows {
		if !p.IsAlive() {
			continue
		}
		p.MarkWhammed(now, reason)
		if err := s.storage.SavePlayer(ctx, p); err != nil {
			s.logger.Error("failed to save whammed player",
				slog.String("player_id", string(p.ID)),
				slog.String("error", err.Error()))
			return err
		}

		s.logger.Info("player whammed",
			slog.String("group", string(p.GroupSlug)),
			slog.String("player_id", string(p.ID)),
			slog.String("reason", reason))

		changefeed.Announce(ctx, s.feed, s.logger, model.Change{
			Table:     model.TablePlayers,
			Op:        model.OpUpdate,
			GroupSlug: p.GroupSlug,
			PlayerID:  p.ID,
			UserID:    p.UserID,
			At:        now,
		})
	}
	return nil
}

// Revive returns a whammed player to the game. Group admin only; other rows
// of the same user are left alone.
func (s *Service) Revive(ctx context.Context, id model.PlayerID, requester model.UserID) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAdmin(ctx, player, requester); err != nil {
		return nil, err
	}
	if player.IsAlive() {
		return nil, model.ErrNotWhammed
	}

	player.MarkAlive()
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player revived",
		slog.String("group", string(player.GroupSlug)),
		slog.String("player_id", string(player.ID)))

	changefeed.Announce(ctx, s.feed, s.logger, model.Change{
		Table:     model.TablePlayers,
		Op:        model.OpUpdate,
		GroupSlug: player.GroupSlug,
		PlayerID:  player.ID,
		UserID:    player.UserID,
		At:        s.clock.Now(),
	})
	return player, nil
}

// Delete removes a player row from its group. Group admin only.
func (s *Service) Delete(ctx context.Context, id model.PlayerID, requester model.UserID) error {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeAdmin(ctx, player, requester); err != nil {
		return err
	}

	if err := s.storage.DeletePlayer(ctx, id); err != nil {
		return err
	}

	s.logger.Info("player removed",
		slog.String("group", string(player.GroupSlug)),
		slog.String("player_id", string(player.ID)))

	changefeed.Announce(ctx, s.feed, s.logger, model.Change{
		Table:     model.TablePlayers,
		Op:        model.OpDelete,
		GroupSlug: player.GroupSlug,
		PlayerID:  player.ID,
		UserID:    player.UserID,
		At:        s.clock.Now(),
	})
	return nil
}

func (s *Service) authorizeAdmin(ctx context.Context, player *model.Player, requester model.UserID) error {
	g, err := s.storage.GetGroup(ctx, player.GroupSlug)
	if err != nil {
		return err
	}
	if !g.IsAdmin(requester) {
		return model.ErrNotGroupAdmin
	}
	return nil
}

func (s *Service) authorizeOwnerOrAdmin(ctx context.Context, player *model.Player, requester model.UserID) error {
	if player.UserID == "" || player.UserID == requester {
		return nil
	}
	if err := s.authorizeAdmin(ctx, player, requester); err != nil {
		if errors.Is(err, model.ErrNotGroupAdmin) {
			return model.ErrNotYourPlayer
		}
		return err
	}
	return nil
}

// GetPlayer retrieves a single player row
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// GetProfile returns the user's profile, read from their earliest row
func (s *Service) GetProfile(ctx context.Context, userID model.UserID) (*Profile, error) {
	if userID == "" {
		return nil, model.ErrIdentityRequired
	}
	rows, err := s.storage.ListPlayersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrProfileNotFound
	}
	return newProfile(userID, rows), nil
}

func newProfile(userID model.UserID, rows []*model.Player) *Profile {
	model.SortByJoined(rows)
	first := rows[0]
	profile := &Profile{
		UserID:    userID,
		Name:      first.Name,
		Company:   first.Company,
		AvatarURL: first.AvatarURL,
		PIN:       first.PIN,
		Status:    model.StatusAlive,
		Players:   rows,
	}
	for _, p := range rows {
		if !p.IsAlive() {
			profile.Status = model.StatusWhammed
			profile.WhammedAt = p.WhammedAt
			break
		}
	}
	return profile
}

// UpdateProfile applies the update to every row of the user
func (s *Service) UpdateProfile(ctx context.Context, userID model.UserID, update ProfileUpdate) (*Profile, error) {
	if userID == "" {
		return nil, model.ErrIdentityRequired
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, model.ErrPlayerNameMissing
	}
	if update.PIN != nil {
		if err := ValidatePIN(strings.TrimSpace(*update.PIN)); err != nil {
			return nil, err
		}
	}

	rows, err := s.storage.ListPlayersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrProfileNotFound
	}

	now := s.clock.Now()
	for _, p := range rows {
		applyUpdate(p, update)
		if err := s.storage.SavePlayer(ctx, p); err != nil {
			return nil, err
		}
		changefeed.Announce(ctx, s.feed, s.logger, model.Change{
			Table:     model.TablePlayers,
			Op:        model.OpUpdate,
			GroupSlug: p.GroupSlug,
			PlayerID:  p.ID,
			UserID:    userID,
			At:        now,
		})
	}

	s.logger.Info("profile updated",
		slog.String("user_id", string(userID)),
		slog.Int("rows", len(rows)))

	return newProfile(userID, rows), nil
}

func applyUpdate(p *model.Player, update ProfileUpdate) {
	if update.Name != nil {
		p.Name = strings.TrimSpace(*update.Name)
	}
	if update.Company != nil {
		p.Company = strings.TrimSpace(*update.Company)
	}
	if update.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*update.AvatarURL)
	}
	if update.PIN != nil {
		p.PIN = strings.TrimSpace(*update.PIN)
	}
}

// Recover finds the user owning a name+PIN pair. The caller replaces its
// stored identifiers with the result.
func (s *Service) Recover(ctx context.Context, name, pin string) (*Recovery, error) {
	name = strings.TrimSpace(name)
	pin = strings.TrimSpace(pin)
	if name == "" {
		return nil, model.ErrPlayerNameMissing
	}
	if pin == "" || ValidatePIN(pin) != nil {
		return nil, model.ErrInvalidPIN
	}

	rows, err := s.storage.FindPlayersByRecovery(ctx, name, pin)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		s.logger.Info("recovery failed", slog.String("reason", "no match"))
		return nil, model.ErrRecoveryNoMatch
	}

	userID := rows[0].UserID
	for _, p := range rows[1:] {
		if p.UserID != userID {
			s.logger.Warn("recovery failed", slog.String("reason", "ambiguous"))
			return nil, model.ErrRecoveryAmbiguous
		}
	}

	model.SortByJoined(rows)
	s.logger.Info("device recovered",
		slog.String("user_id", string(userID)),
		slog.Int("rows", len(rows)))

	return &Recovery{UserID: userID, Players: rows}, nil
}
