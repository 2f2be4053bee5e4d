// internal/services/siteconfig_service_test.go
package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

type SiteConfigServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *SiteConfigService
	admin   models.Actor
}

func (suite *SiteConfigServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.service = NewSiteConfigService(suite.db, nil)
	suite.admin = seedAccount(suite.T(), suite.db, "admin", models.RoleAdmin)
	seedConfigDraft(suite.T(), suite.db)
}

func (suite *SiteConfigServiceTestSuite) patchTitle(revision int64, title string) (*models.SiteConfigDraft, error) {
	return suite.service.UpdateDraft(suite.admin, &UpdateDraftRequest{
		Revision: revision,
		Patches:  []PatchOp{{Path: "pages.home.hero_title", Value: title}},
	})
}

func (suite *SiteConfigServiceTestSuite) TestPatchBumpsRevisionAndDirty() {
	draft, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	suite.False(draft.Dirty)

	updated, err := suite.patchTitle(draft.Revision, "Precision manufacturing")
	suite.Require().NoError(err)
	suite.Equal(draft.Revision+1, updated.Revision)
	suite.True(updated.Dirty)

	pages := updated.Content["pages"].(map[string]interface{})
	home := pages["home"].(map[string]interface{})
	suite.Equal("Precision manufacturing", home["hero_title"])
}

func (suite *SiteConfigServiceTestSuite) TestStaleRevisionConflict() {
	draft, err := suite.service.GetDraft()
	suite.Require().NoError(err)

	_, err = suite.patchTitle(draft.Revision, "first writer")
	suite.Require().NoError(err)

	// A second writer holding the old token must lose.
	_, err = suite.patchTitle(draft.Revision, "second writer")
	suite.True(apperrors.IsKind(err, apperrors.KindConflict))

	current, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	home := current.Content["pages"].(map[string]interface{})["home"].(map[string]interface{})
	suite.Equal("first writer", home["hero_title"])
}

func (suite *SiteConfigServiceTestSuite) TestUnknownPathLeavesDraftUntouched() {
	draft, err := suite.service.GetDraft()
	suite.Require().NoError(err)

	_, err = suite.service.UpdateDraft(suite.admin, &UpdateDraftRequest{
		Revision: draft.Revision,
		Patches: []PatchOp{
			{Path: "pages.home.hero_title", Value: "partial"},
			{Path: "pages.home.nonexistent", Value: "x"},
		},
	})
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))

	current, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	suite.Equal(draft.Revision, current.Revision)
	home := current.Content["pages"].(map[string]interface{})["home"].(map[string]interface{})
	suite.Equal("", home["hero_title"])
}

func (suite *SiteConfigServiceTestSuite) TestPublishAssignsConsecutiveVersions() {
	for i := 1; i <= 3; i++ {
		version, err := suite.service.Publish(suite.admin, "publish")
		suite.Require().NoError(err)
		suite.Equal(int64(i), version.Version)
	}

	draft, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	suite.Equal(int64(3), draft.ActiveVersion)
	suite.False(draft.Dirty)
}

func (suite *SiteConfigServiceTestSuite) TestConcurrentPublishesStayGapFree() {
	const publishers = 5

	var wg sync.WaitGroup
	errs := make(chan error, publishers)
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.Publish(suite.admin, "racing publish")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		suite.NoError(err)
	}

	versions, total, err := suite.service.ListHistory(utils.PaginationParams{Page: 1, Limit: 10, Order: "desc"})
	suite.Require().NoError(err)
	suite.Equal(int64(publishers), total)
	suite.Require().Len(versions, publishers)
	for i, version := range versions {
		suite.Equal(int64(publishers-i), version.Version)
	}
}

func (suite *SiteConfigServiceTestSuite) TestPublishSnapshotsCurrentContent() {
	draft, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	_, err = suite.patchTitle(draft.Revision, "snapshot me")
	suite.Require().NoError(err)

	version, err := suite.service.Publish(suite.admin, "first cut")
	suite.Require().NoError(err)

	snapshot, err := suite.service.GetVersion(version.Version)
	suite.Require().NoError(err)
	home := snapshot.Content["pages"].(map[string]interface{})["home"].(map[string]interface{})
	suite.Equal("snapshot me", home["hero_title"])
	suite.Equal("first cut", snapshot.Message)

	// Later draft edits must not leak into the stored snapshot.
	current, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	_, err = suite.patchTitle(current.Revision, "after publish")
	suite.Require().NoError(err)

	snapshot, err = suite.service.GetVersion(version.Version)
	suite.Require().NoError(err)
	home = snapshot.Content["pages"].(map[string]interface{})["home"].(map[string]interface{})
	suite.Equal("snapshot me", home["hero_title"])
}

func (suite *SiteConfigServiceTestSuite) TestRollbackMintsNewVersion() {
	draft, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	_, err = suite.patchTitle(draft.Revision, "version one")
	suite.Require().NoError(err)
	_, err = suite.service.Publish(suite.admin, "v1")
	suite.Require().NoError(err)

	draft, err = suite.service.GetDraft()
	suite.Require().NoError(err)
	_, err = suite.patchTitle(draft.Revision, "version two")
	suite.Require().NoError(err)
	_, err = suite.service.Publish(suite.admin, "v2")
	suite.Require().NoError(err)

	rolled, err := suite.service.Rollback(suite.admin, &RollbackRequest{Version: 1})
	suite.Require().NoError(err)
	suite.Equal(int64(3), rolled.Version)

	home := rolled.Content["pages"].(map[string]interface{})["home"].(map[string]interface{})
	suite.Equal("version one", home["hero_title"])

	// History keeps all three versions; the draft now matches version 1
	// and is clean.
	_, total, err := suite.service.ListHistory(countOnlyParams())
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)

	draft, err = suite.service.GetDraft()
	suite.Require().NoError(err)
	suite.Equal(int64(3), draft.ActiveVersion)
	suite.False(draft.Dirty)
	home = draft.Content["pages"].(map[string]interface{})["home"].(map[string]interface{})
	suite.Equal("version one", home["hero_title"])
}

func (suite *SiteConfigServiceTestSuite) TestRollbackUnknownVersion() {
	_, err := suite.service.Rollback(suite.admin, &RollbackRequest{Version: 42})
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *SiteConfigServiceTestSuite) TestActiveSnapshotBeforeFirstPublish() {
	_, err := suite.service.ActiveSnapshot()
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))

	version, _, err := suite.service.CurrentVersion()
	suite.Require().NoError(err)
	suite.Equal(int64(0), version)
}

func (suite *SiteConfigServiceTestSuite) TestAppendCategory() {
	entry := map[string]interface{}{"id": "cat-1", "title": "Fixtures"}
	err := suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.service.AppendCategoryTx(tx, entry)
	})
	suite.Require().NoError(err)

	draft, err := suite.service.GetDraft()
	suite.Require().NoError(err)
	suite.True(draft.Dirty)
	categories := draft.Content["categories"].([]interface{})
	suite.Require().Len(categories, 1)
	suite.Equal("Fixtures", categories[0].(map[string]interface{})["title"])

	// Appending the same id again is a conflict.
	err = suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.service.AppendCategoryTx(tx, entry)
	})
	suite.True(apperrors.IsKind(err, apperrors.KindConflict))
}

func TestSiteConfigServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SiteConfigServiceTestSuite))
}
