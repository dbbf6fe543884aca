package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage/memory"
	"github.com/mcoot/whamageddon/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) addGroup(slug model.GroupSlug) {
	s.Require().NoError(s.storage.SaveGroup(s.ctx, &model.Group{ID: string(slug), Name: string(slug), Slug: slug}))
}

func (s *ServiceSuite) addPlayer(id model.PlayerID, slug model.GroupSlug, user model.UserID, whammed bool) {
	p := &model.Player{ID: id, GroupSlug: slug, UserID: user, Name: string(id), Status: model.StatusAlive}
	if whammed {
		p.MarkWhammed(time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), "")
	}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, p))
}

func (s *ServiceSuite) TestSummaryEmpty() {
	summary, err := s.service.Summary(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, summary.Groups)
	s.Equal(0, summary.Players)
	s.Equal(0.0, summary.SurvivalRate)
	s.NotNil(summary.Ranking)
	s.Empty(summary.Ranking)
}

func (s *ServiceSuite) TestSummary() {
	s.addGroup("office-1")
	s.addGroup("family-2")
	s.addGroup("empty-3")

	s.addPlayer("p-1", "office-1", "u-1", true)
	s.addPlayer("p-2", "office-1", "u-2", false)
	s.addPlayer("p-3", "family-2", "u-1", true)
	s.addPlayer("p-4", "family-2", "u-3", false)
	s.addPlayer("p-5", "family-2", "", false)

	summary, err := s.service.Summary(s.ctx)
	s.Require().NoError(err)

	s.Equal(3, summary.Groups)
	s.Equal(5, summary.Players)
	s.Equal(3, summary.Alive)
	s.Equal(2, summary.Whammed)
	s.Equal(4, summary.Users)
	s.InDelta(0.6, summary.SurvivalRate, 1e-9)

	s.Require().Len(summary.Ranking, 3)
	s.Equal(model.GroupSlug("family-2"), summary.Ranking[0].Slug)
	s.InDelta(2.0/3.0, summary.Ranking[0].SurvivalRate, 1e-9)
	s.Equal(model.GroupSlug("office-1"), summary.Ranking[1].Slug)
	s.Equal(model.GroupSlug("empty-3"), summary.Ranking[2].Slug)
	s.Equal(0, summary.Ranking[2].Players)
}

func (s *ServiceSuite) TestForGroup() {
	s.addGroup("office-1")
	s.addPlayer("p-1", "office-1", "u-1", true)
	s.addPlayer("p-2", "office-1", "u-2", false)
	s.addPlayer("p-3", "office-1", "u-3", false)
	s.addPlayer("p-4", "family-2", "u-4", true)

	gs, err := s.service.ForGroup(s.ctx, "office-1")
	s.Require().NoError(err)
	s.Equal(3, gs.Players)
	s.Equal(2, gs.Alive)
	s.Equal(1, gs.Whammed)
	s.InDelta(2.0/3.0, gs.SurvivalRate, 1e-9)
}

func (s *ServiceSuite) TestForGroupNotFound() {
	_, err := s.service.ForGroup(s.ctx, "missing-1")
	s.ErrorIs(err, model.ErrGroupNotFound)
}
