package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
	"github.com/mcoot/whamageddon/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		st, err := New(":memory:")
		s.Require().NoError(err)
		return st
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestDataSurvivesReopen() {
	path := filepath.Join(s.T().TempDir(), "wham.db")

	st, err := New(path)
	s.Require().NoError(err)
	s.Require().NoError(st.SaveGroup(s.Ctx, &model.Group{ID: "g-1", Name: "Office", Slug: "office-1"}))
	s.Require().NoError(st.Close())

	reopened, err := New(path)
	s.Require().NoError(err)
	defer func() { _ = reopened.Close() }()

	group, err := reopened.GetGroup(s.Ctx, "office-1")
	s.Require().NoError(err)
	s.Equal("Office", group.Name)
}
