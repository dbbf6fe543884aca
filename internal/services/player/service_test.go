package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/whamageddon/internal/dependencies/mocks"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/storage/memory"
	"github.com/mcoot/whamageddon/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	feed    *mocks.RecordingFeed
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	groups  *group.Service
	service *Service
	ctx     context.Context

	office *model.Group
	family *model.Group
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.feed = mocks.NewRecordingFeed()
	s.clock = mocks.NewMockClock(time.Date(2025, 12, 2, 9, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.groups = group.New(s.storage, s.feed, s.clock, s.random, logger)
	s.service = New(s.storage, s.groups, s.feed, s.clock, s.random, logger)
	s.ctx = context.Background()

	s.random.QueueIntn(1, 2)
	var err error
	s.office, err = s.groups.CreateGroup(s.ctx, "Office", "u-admin", "")
	s.Require().NoError(err)
	s.family, err = s.groups.CreateGroup(s.ctx, "Family", "u-admin", "")
	s.Require().NoError(err)
	s.feed.Reset()
}

func (s *ServiceSuite) join(slug model.GroupSlug, user model.UserID, name string) *model.Player {
	p, err := s.service.Join(s.ctx, slug, JoinRequest{UserID: user, Name: name})
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	return p
}

func strPtr(v string) *string { return &v }

// PIN tests

func (s *ServiceSuite) TestValidatePIN() {
	s.NoError(ValidatePIN(""))
	s.NoError(ValidatePIN("0123"))
	s.ErrorIs(ValidatePIN("123"), model.ErrInvalidPIN)
	s.ErrorIs(ValidatePIN("12345"), model.ErrInvalidPIN)
	s.ErrorIs(ValidatePIN("12a4"), model.ErrInvalidPIN)
}

// Join tests

func (s *ServiceSuite) TestJoinAssignsUserID() {
	s.random.QueueID("user-1", "player-1")

	p, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{Name: " Alice ", Company: "Acme", PIN: "1234"})
	s.Require().NoError(err)

	s.Equal(model.UserID("user-1"), p.UserID)
	s.Equal(model.PlayerID("player-1"), p.ID)
	s.Equal("Alice", p.Name)
	s.Equal("Acme", p.Company)
	s.Equal("1234", p.PIN)
	s.True(p.IsAlive())
	s.Equal(s.office.Slug, p.GroupSlug)
}

func (s *ServiceSuite) TestJoinKeepsSuppliedUserID() {
	p, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{UserID: "u-1", Name: "Alice"})
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), p.UserID)
}

func (s *ServiceSuite) TestJoinRequiresName() {
	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{Name: "  "})
	s.ErrorIs(err, model.ErrPlayerNameMissing)
}

func (s *ServiceSuite) TestJoinRejectsBadPIN() {
	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{Name: "Alice", PIN: "12"})
	s.ErrorIs(err, model.ErrInvalidPIN)
}

func (s *ServiceSuite) TestJoinUnknownGroup() {
	_, err := s.service.Join(s.ctx, "missing-9", JoinRequest{Name: "Alice"})
	s.ErrorIs(err, model.ErrGroupNotFound)
}

func (s *ServiceSuite) TestJoinChecksPassword() {
	s.random.QueueIntn(3)
	locked, err := s.groups.CreateGroup(s.ctx, "Locked", "u-admin", "sekrit")
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, locked.Slug, JoinRequest{Name: "Alice", Password: "nope"})
	s.ErrorIs(err, model.ErrWrongPassword)

	_, err = s.service.Join(s.ctx, locked.Slug, JoinRequest{Name: "Alice", Password: "sekrit"})
	s.NoError(err)
}

func (s *ServiceSuite) TestJoinTwiceRejected() {
	s.join(s.office.Slug, "u-1", "Alice")

	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{UserID: "u-1", Name: "Alice"})
	s.ErrorIs(err, model.ErrAlreadyInGroup)
}

func (s *ServiceSuite) TestJoinInheritsProfile() {
	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{
		UserID: "u-1", Name: "Alice", Company: "Acme", AvatarURL: "https://example.com/a.png", PIN: "1234",
	})
	s.Require().NoError(err)

	p, err := s.service.Join(s.ctx, s.family.Slug, JoinRequest{UserID: "u-1"})
	s.Require().NoError(err)
	s.Equal("Alice", p.Name)
	s.Equal("Acme", p.Company)
	s.Equal("https://example.com/a.png", p.AvatarURL)
	s.Equal("1234", p.PIN)
}

func (s *ServiceSuite) TestJoinAfterWhamJoinsWhammed() {
	first := s.join(s.office.Slug, "u-1", "Alice")
	_, err := s.service.Wham(s.ctx, first.ID, "u-1", "radio")
	s.Require().NoError(err)
	whammedAt := s.clock.Now()
	s.clock.Advance(time.Hour)

	p, err := s.service.Join(s.ctx, s.family.Slug, JoinRequest{UserID: "u-1", Name: "Alice"})
	s.Require().NoError(err)
	s.False(p.IsAlive())
	s.Require().NotNil(p.WhammedAt)
	s.True(whammedAt.Equal(*p.WhammedAt))
	s.Equal("radio", p.WhamReason)
}

func (s *ServiceSuite) TestJoinPublishesInsert() {
	p := s.join(s.office.Slug, "u-1", "Alice")

	published := s.feed.Published()
	s.Require().Len(published, 1)
	s.Equal(model.TablePlayers, published[0].Table)
	s.Equal(model.OpInsert, published[0].Op)
	s.Equal(p.ID, published[0].PlayerID)
	s.Equal(s.office.Slug, published[0].GroupSlug)
}

// Wham tests

func (s *ServiceSuite) TestWhamOwnRow() {
	p := s.join(s.office.Slug, "u-1", "Alice")

	whammed, err := s.service.Wham(s.ctx, p.ID, "u-1", "  supermarket ")
	s.Require().NoError(err)
	s.False(whammed.IsAlive())
	s.Equal("supermarket", whammed.WhamReason)
	s.Require().NotNil(whammed.WhammedAt)
	s.Equal(s.clock.Now(), *whammed.WhammedAt)
}

func (s *ServiceSuite) TestWhamSpreadsAcrossUserRows() {
	a := s.join(s.office.Slug, "u-1", "Alice")
	b := s.join(s.family.Slug, "u-1", "Alice")
	other := s.join(s.office.Slug, "u-2", "Bob")
	s.feed.Reset()

	_, err := s.service.Wham(s.ctx, a.ID, "u-1", "")
	s.Require().NoError(err)

	for _, id := range []model.PlayerID{a.ID, b.ID} {
		p, err := s.service.GetPlayer(s.ctx, id)
		s.Require().NoError(err)
		s.False(p.IsAlive())
	}
	bob, err := s.service.GetPlayer(s.ctx, other.ID)
	s.Require().NoError(err)
	s.True(bob.IsAlive())

	groups := []model.GroupSlug{}
	for _, c := range s.feed.Published() {
		groups = append(groups, c.GroupSlug)
	}
	s.ElementsMatch([]model.GroupSlug{s.office.Slug, s.family.Slug}, groups)
}

func (s *ServiceSuite) TestWhamAlreadyWhammed() {
	p := s.join(s.office.Slug, "u-1", "Alice")
	_, err := s.service.Wham(s.ctx, p.ID, "u-1", "")
	s.Require().NoError(err)

	_, err = s.service.Wham(s.ctx, p.ID, "u-1", "")
	s.ErrorIs(err, model.ErrAlreadyWhammed)
}

func (s *ServiceSuite) TestWhamSomeoneElseRejected() {
	p := s.join(s.office.Slug, "u-1", "Alice")

	_, err := s.service.Wham(s.ctx, p.ID, "u-2", "")
	s.ErrorIs(err, model.ErrNotYourPlayer)
}

func (s *ServiceSuite) TestWhamByAdmin() {
	p := s.join(s.office.Slug, "u-1", "Alice")

	whammed, err := s.service.Wham(s.ctx, p.ID, "u-admin", "caught on camera")
	s.Require().NoError(err)
	s.False(whammed.IsAlive())
}

func (s *ServiceSuite) TestWhamAnonymousRow() {
	row := &model.Player{ID: "legacy", GroupSlug: s.office.Slug, Name: "Old", Status: model.StatusAlive}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, row))

	whammed, err := s.service.Wham(s.ctx, "legacy", "", "")
	s.Require().NoError(err)
	s.False(whammed.IsAlive())
}

func (s *ServiceSuite) TestWhamUnknownPlayer() {
	_, err := s.service.Wham(s.ctx, "missing", "u-1", "")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestWhamUser() {
	s.join(s.office.Slug, "u-1", "Alice")
	s.join(s.family.Slug, "u-1", "Alice")

	rows, err := s.service.WhamUser(s.ctx, "u-1", "elevator")
	s.Require().NoError(err)
	s.Len(rows, 2)
	for _, p := range rows {
		s.False(p.IsAlive())
		s.Equal("elevator", p.WhamReason)
	}
}

func (s *ServiceSuite) TestWhamUserErrors() {
	_, err := s.service.WhamUser(s.ctx, "", "")
	s.ErrorIs(err, model.ErrIdentityRequired)

	_, err = s.service.WhamUser(s.ctx, "u-nobody", "")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *ServiceSuite) TestWhamUserKeepsEarlierTimestamp() {
	a := s.join(s.office.Slug, "u-1", "Alice")
	_, err := s.service.Wham(s.ctx, a.ID, "u-1", "first")
	s.Require().NoError(err)
	first := s.clock.Now()

	s.clock.Advance(time.Hour)
	rows, err := s.service.WhamUser(s.ctx, "u-1", "second")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.True(first.Equal(*rows[0].WhammedAt))
	s.Equal("first", rows[0].WhamReason)
}

// Revive and delete tests

func (s *ServiceSuite) TestReviveByAdmin() {
	p := s.join(s.office.Slug, "u-1", "Alice")
	_, err := s.service.Wham(s.ctx, p.ID, "u-1", "")
	s.Require().NoError(err)

	revived, err := s.service.Revive(s.ctx, p.ID, "u-admin")
	s.Require().NoError(err)
	s.True(revived.IsAlive())
	s.Nil(revived.WhammedAt)
	s.Empty(revived.WhamReason)
}

func (s *ServiceSuite) TestReviveRequiresAdmin() {
	p := s.join(s.office.Slug, "u-1", "Alice")
	_, err := s.service.Wham(s.ctx, p.ID, "u-1", "")
	s.Require().NoError(err)

	_, err = s.service.Revive(s.ctx, p.ID, "u-1")
	s.ErrorIs(err, model.ErrNotGroupAdmin)
}

func (s *ServiceSuite) TestReviveAlivePlayer() {
	p := s.join(s.office.Slug, "u-1", "Alice")

	_, err := s.service.Revive(s.ctx, p.ID, "u-admin")
	s.ErrorIs(err, model.ErrNotWhammed)
}

func (s *ServiceSuite) TestDeleteByAdmin() {
	p := s.join(s.office.Slug, "u-1", "Alice")
	s.feed.Reset()

	s.Require().NoError(s.service.Delete(s.ctx, p.ID, "u-admin"))

	_, err := s.service.GetPlayer(s.ctx, p.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	published := s.feed.Published()
	s.Require().Len(published, 1)
	s.Equal(model.OpDelete, published[0].Op)
}

func (s *ServiceSuite) TestDeleteRequiresAdmin() {
	p := s.join(s.office.Slug, "u-1", "Alice")

	err := s.service.Delete(s.ctx, p.ID, "u-1")
	s.ErrorIs(err, model.ErrNotGroupAdmin)
}

// Profile tests

func (s *ServiceSuite) TestGetProfile() {
	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{UserID: "u-1", Name: "Alice", Company: "Acme", PIN: "1234"})
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	s.join(s.family.Slug, "u-1", "")

	profile, err := s.service.GetProfile(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("Alice", profile.Name)
	s.Equal("Acme", profile.Company)
	s.Equal("1234", profile.PIN)
	s.Equal(model.StatusAlive, profile.Status)
	s.Len(profile.Players, 2)
	s.Equal(s.office.Slug, profile.Players[0].GroupSlug)
}

func (s *ServiceSuite) TestGetProfileErrors() {
	_, err := s.service.GetProfile(s.ctx, "")
	s.ErrorIs(err, model.ErrIdentityRequired)

	_, err = s.service.GetProfile(s.ctx, "u-nobody")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *ServiceSuite) TestUpdateProfileAppliesToAllRows() {
	s.join(s.office.Slug, "u-1", "Alice")
	s.join(s.family.Slug, "u-1", "Alice")
	s.feed.Reset()

	profile, err := s.service.UpdateProfile(s.ctx, "u-1", ProfileUpdate{
		Name:    strPtr(" Alicia "),
		Company: strPtr("Globex"),
		PIN:     strPtr("4321"),
	})
	s.Require().NoError(err)
	s.Equal("Alicia", profile.Name)

	rows, err := s.storage.ListPlayersByUser(s.ctx, "u-1")
	s.Require().NoError(err)
	for _, p := range rows {
		s.Equal("Alicia", p.Name)
		s.Equal("Globex", p.Company)
		s.Equal("4321", p.PIN)
		s.Empty(p.AvatarURL)
	}
	s.Len(s.feed.Published(), 2)
}

func (s *ServiceSuite) TestUpdateProfileValidation() {
	s.join(s.office.Slug, "u-1", "Alice")

	_, err := s.service.UpdateProfile(s.ctx, "u-1", ProfileUpdate{Name: strPtr("")})
	s.ErrorIs(err, model.ErrPlayerNameMissing)

	_, err = s.service.UpdateProfile(s.ctx, "u-1", ProfileUpdate{PIN: strPtr("99999")})
	s.ErrorIs(err, model.ErrInvalidPIN)

	_, err = s.service.UpdateProfile(s.ctx, "u-nobody", ProfileUpdate{Company: strPtr("x")})
	s.ErrorIs(err, model.ErrProfileNotFound)
}

// Recovery tests

func (s *ServiceSuite) TestRecover() {
	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{UserID: "u-1", Name: "Alice", PIN: "1234"})
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	_, err = s.service.Join(s.ctx, s.family.Slug, JoinRequest{UserID: "u-1"})
	s.Require().NoError(err)

	rec, err := s.service.Recover(s.ctx, "alice", "1234")
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), rec.UserID)
	s.Require().Len(rec.Players, 2)
	s.Equal(s.office.Slug, rec.Players[0].GroupSlug)
}

func (s *ServiceSuite) TestRecoverNoMatch() {
	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{UserID: "u-1", Name: "Alice", PIN: "1234"})
	s.Require().NoError(err)

	_, err = s.service.Recover(s.ctx, "Alice", "0000")
	s.ErrorIs(err, model.ErrRecoveryNoMatch)
}

func (s *ServiceSuite) TestRecoverAmbiguous() {
	_, err := s.service.Join(s.ctx, s.office.Slug, JoinRequest{UserID: "u-1", Name: "Alice", PIN: "1234"})
	s.Require().NoError(err)
	_, err = s.service.Join(s.ctx, s.family.Slug, JoinRequest{UserID: "u-2", Name: "Alice", PIN: "1234"})
	s.Require().NoError(err)

	_, err = s.service.Recover(s.ctx, "Alice", "1234")
	s.ErrorIs(err, model.ErrRecoveryAmbiguous)
}

func (s *ServiceSuite) TestRecoverValidation() {
	_, err := s.service.Recover(s.ctx, "", "1234")
	s.ErrorIs(err, model.ErrPlayerNameMissing)

	_, err = s.service.Recover(s.ctx, "Alice", "")
	s.ErrorIs(err, model.ErrInvalidPIN)

	_, err = s.service.Recover(s.ctx, "Alice", "12")
	s.ErrorIs(err, model.ErrInvalidPIN)
}
