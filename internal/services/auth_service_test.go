// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.service = NewAuthService(suite.db, 1)
	utils.SetJWTSecret("auth-service-test-secret")
	seedAccount(suite.T(), suite.db, "factory", models.RoleFactory)
}

func (suite *AuthServiceTestSuite) TestLoginSuccess() {
	resp, err := suite.service.Login(&LoginRequest{Username: "factory", Password: "testing-password-1"})
	suite.Require().NoError(err)
	suite.NotEmpty(resp.Token)
	suite.Equal(models.RoleFactory, resp.Account.Role)

	claims, err := utils.ValidateJWT(resp.Token)
	suite.Require().NoError(err)
	suite.Equal("factory", claims.Role)
	suite.Equal(resp.Account.ID.String(), claims.AccountID)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	_, err := suite.service.Login(&LoginRequest{Username: "factory", Password: "wrong-password-1"})
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *AuthServiceTestSuite) TestLoginUnknownUser() {
	_, err := suite.service.Login(&LoginRequest{Username: "stranger", Password: "whatever-password"})
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *AuthServiceTestSuite) TestLoginDisabledAccount() {
	suite.Require().NoError(suite.db.Model(&models.Account{}).
		Where("username = ?", "factory").
		Update("active", false).Error)

	_, err := suite.service.Login(&LoginRequest{Username: "factory", Password: "testing-password-1"})
	suite.True(apperrors.IsKind(err, apperrors.KindAuthorization))
}

func (suite *AuthServiceTestSuite) TestLoginRecordsLastLogin() {
	resp, err := suite.service.Login(&LoginRequest{Username: "factory", Password: "testing-password-1"})
	suite.Require().NoError(err)
	suite.NotNil(resp.Account.LastLoginAt)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
