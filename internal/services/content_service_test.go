// internal/services/content_service_test.go
package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
)

type ContentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ContentService
	factory models.Actor
	admin   models.Actor
}

func (suite *ContentServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.service = NewContentService(suite.db, nil, nil, nil, 5*time.Second)
	suite.factory = seedAccount(suite.T(), suite.db, "factory", models.RoleFactory)
	suite.admin = seedAccount(suite.T(), suite.db, "admin", models.RoleAdmin)
}

func (suite *ContentServiceTestSuite) createDraft(actor models.Actor, images ...string) *models.Product {
	product, err := suite.service.CreateDraft(actor, &CreateProductRequest{
		Name:   "CNC bracket",
		Images: images,
	})
	suite.Require().NoError(err)
	return product
}

func (suite *ContentServiceTestSuite) TestCreateDraftRequiresName() {
	_, err := suite.service.CreateDraft(suite.factory, &CreateProductRequest{Name: "   "})
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *ContentServiceTestSuite) TestSubmitRequiresImage() {
	product := suite.createDraft(suite.factory)

	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))

	var persisted models.Product
	suite.Require().NoError(suite.db.First(&persisted, "id = ?", product.ID).Error)
	suite.Equal(models.StatusDraft, persisted.Status)
}

func (suite *ContentServiceTestSuite) TestApproveFlow() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")

	submitted, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)
	suite.Equal(models.StatusAwaitingReview, submitted.Status)

	decided, err := suite.service.Decide(product.ID, models.DecisionApprove, "looks good", suite.admin)
	suite.Require().NoError(err)
	suite.Equal(models.StatusPublished, decided.Status)
	suite.True(decided.PendingPublish)

	visible, err := suite.service.GetProduct(product.ID, nil)
	suite.Require().NoError(err)
	suite.True(visible.IsPublicVisible())
}

func (suite *ContentServiceTestSuite) TestRejectAndResubmit() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")

	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)

	rejected, err := suite.service.Decide(product.ID, models.DecisionReject, "blurry photos", suite.admin)
	suite.Require().NoError(err)
	suite.Equal(models.StatusRejected, rejected.Status)
	suite.Equal("blurry photos", rejected.ReviewNote)

	// Resubmission jumps straight back into the queue and clears the note.
	resubmitted, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)
	suite.Equal(models.StatusAwaitingReview, resubmitted.Status)
	suite.Empty(resubmitted.ReviewNote)
}

func (suite *ContentServiceTestSuite) TestDecideRequiresAwaitingReview() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")

	_, err := suite.service.Decide(product.ID, models.DecisionApprove, "", suite.admin)
	appErr, ok := apperrors.AsError(err)
	suite.Require().True(ok)
	suite.Equal(apperrors.KindInvalidState, appErr.Kind)
	suite.Equal("draft", appErr.CurrentStatus)
}

func (suite *ContentServiceTestSuite) TestSecondDecisionLoses() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")
	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)

	_, err = suite.service.Decide(product.ID, models.DecisionApprove, "", suite.admin)
	suite.Require().NoError(err)

	_, err = suite.service.Decide(product.ID, models.DecisionReject, "", suite.admin)
	appErr, ok := apperrors.AsError(err)
	suite.Require().True(ok)
	suite.Equal(apperrors.KindInvalidState, appErr.Kind)
	suite.Equal("published", appErr.CurrentStatus)
}

func (suite *ContentServiceTestSuite) TestConcurrentDecisionsLinearized() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")
	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, action := range []models.DecisionAction{models.DecisionApprove, models.DecisionReject} {
		wg.Add(1)
		go func(a models.DecisionAction) {
			defer wg.Done()
			_, err := suite.service.Decide(product.ID, a, "", suite.admin)
			errs <- err
		}(action)
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		lost++
		appErr, ok := apperrors.AsError(err)
		suite.Require().True(ok)
		suite.Equal(apperrors.KindInvalidState, appErr.Kind)
		suite.Contains([]string{"published", "rejected"}, appErr.CurrentStatus)
	}
	suite.Equal(1, won)
	suite.Equal(1, lost)

	var persisted models.Product
	suite.Require().NoError(suite.db.First(&persisted, "id = ?", product.ID).Error)
	suite.Contains([]models.ContentStatus{models.StatusPublished, models.StatusRejected}, persisted.Status)
}

func (suite *ContentServiceTestSuite) TestFactoryCannotDecide() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")
	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)

	_, err = suite.service.Decide(product.ID, models.DecisionApprove, "", suite.factory)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *ContentServiceTestSuite) TestFactoryCannotEditWhileAwaitingReview() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")
	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)

	name := "renamed"
	_, err = suite.service.UpdateProduct(product.ID, suite.factory, &UpdateProductRequest{Name: name})
	suite.True(apperrors.IsKind(err, apperrors.KindInvalidState))
}

func (suite *ContentServiceTestSuite) TestAdminEditsPublishedWithoutReReview() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")
	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)
	_, err = suite.service.Decide(product.ID, models.DecisionApprove, "", suite.admin)
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateProduct(product.ID, suite.admin, &UpdateProductRequest{Name: "corrected name"})
	suite.Require().NoError(err)
	suite.Equal("corrected name", updated.Name)
	suite.Equal(models.StatusPublished, updated.Status)
}

func (suite *ContentServiceTestSuite) TestForeignFactoryDenied() {
	other := seedAccount(suite.T(), suite.db, "factory2", models.RoleFactory)
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")

	_, err := suite.service.UpdateProduct(product.ID, other, &UpdateProductRequest{Name: "hijack"})
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))

	_, err = suite.service.SubmitForReview(product.ID, other)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))

	err = suite.service.Delete(product.ID, other)
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *ContentServiceTestSuite) TestPublicListHidesUnpublished() {
	suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")

	approved := suite.createDraft(suite.factory, "https://cdn.example.com/b.jpg")
	_, err := suite.service.SubmitForReview(approved.ID, suite.factory)
	suite.Require().NoError(err)
	_, err = suite.service.Decide(approved.ID, models.DecisionApprove, "", suite.admin)
	suite.Require().NoError(err)

	products, total, err := suite.service.PublicProducts(countOnlyParams())
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(products, 1)
	suite.Equal(approved.ID, products[0].ID)
}

func (suite *ContentServiceTestSuite) TestPublishedProductWithoutImagesDropsOut() {
	product := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")
	_, err := suite.service.SubmitForReview(product.ID, suite.factory)
	suite.Require().NoError(err)
	_, err = suite.service.Decide(product.ID, models.DecisionApprove, "", suite.admin)
	suite.Require().NoError(err)

	// Admin clears the images; the record stays published but invisible.
	_, err = suite.service.UpdateProduct(product.ID, suite.admin, &UpdateProductRequest{Images: []string{}})
	suite.Require().NoError(err)

	_, total, err := suite.service.PublicProducts(countOnlyParams())
	suite.Require().NoError(err)
	suite.Equal(int64(0), total)

	_, err = suite.service.GetProduct(product.ID, nil)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *ContentServiceTestSuite) TestDeleteRules() {
	draft := suite.createDraft(suite.factory)
	suite.Require().NoError(suite.service.Delete(draft.ID, suite.factory))

	published := suite.createDraft(suite.factory, "https://cdn.example.com/a.jpg")
	_, err := suite.service.SubmitForReview(published.ID, suite.factory)
	suite.Require().NoError(err)
	_, err = suite.service.Decide(published.ID, models.DecisionApprove, "", suite.admin)
	suite.Require().NoError(err)

	err = suite.service.Delete(published.ID, suite.factory)
	suite.True(apperrors.IsKind(err, apperrors.KindInvalidState))

	suite.Require().NoError(suite.service.Delete(published.ID, suite.admin))

	_, err = suite.service.GetProduct(published.ID, &suite.admin)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *ContentServiceTestSuite) TestGetUnknownProduct() {
	_, err := suite.service.GetProduct(uuid.New(), &suite.admin)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestContentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ContentServiceTestSuite))
}
