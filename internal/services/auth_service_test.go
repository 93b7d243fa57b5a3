// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sealtrace/sealtrace-backend/internal/config"
	"github.com/sealtrace/sealtrace-backend/internal/models"
	"github.com/sealtrace/sealtrace-backend/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}
}

func openTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

type AuthServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.db = openTestDB(s.T(), &models.User{})
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	s.svc = NewAuthService(s.db, cfg, nil)
}

func (s *AuthServiceTestSuite) registerManufacturer(email string) *AuthResponse {
	resp, err := s.svc.Register(&RegisterRequest{
		Username:    "glenfoyle",
		Email:       email,
		Password:    "Str0ngPass!x",
		Role:        models.UserRoleManufacturer,
		CompanyName: "Glenfoyle Distillers",
	})
	s.Require().NoError(err)
	return resp
}

func (s *AuthServiceTestSuite) TestRegisterManufacturer() {
	resp := s.registerManufacturer("ops@glenfoyle.example")

	assert.NotEmpty(s.T(), resp.AccessToken)
	assert.NotEmpty(s.T(), resp.RefreshToken)
	assert.Equal(s.T(), "Bearer", resp.TokenType)
	assert.Equal(s.T(), models.UserRoleManufacturer, resp.User.Role)
	assert.Equal(s.T(), models.UserStatusActive, resp.User.Status)

	// Password is hashed, never stored raw
	var stored models.User
	s.Require().NoError(s.db.First(&stored, resp.User.ID).Error)
	assert.NotEqual(s.T(), "Str0ngPass!x", stored.PasswordHash)
	assert.NoError(s.T(), stored.CheckPassword("Str0ngPass!x"))
}

func (s *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	s.registerManufacturer("ops@glenfoyle.example")

	_, err := s.svc.Register(&RegisterRequest{
		Username: "otheruser",
		Email:    "ops@glenfoyle.example",
		Password: "Str0ngPass!x",
		Role:     models.UserRoleConsumer,
	})
	assert.ErrorContains(s.T(), err, "already exists")
}

func (s *AuthServiceTestSuite) TestRegisterManufacturerNeedsCompanyName() {
	_, err := s.svc.Register(&RegisterRequest{
		Username: "nocompany",
		Email:    "nocompany@example.com",
		Password: "Str0ngPass!x",
		Role:     models.UserRoleManufacturer,
	})
	assert.ErrorContains(s.T(), err, "company name")
}

func (s *AuthServiceTestSuite) TestRegisterAdminRoleRejected() {
	_, err := s.svc.Register(&RegisterRequest{
		Username: "sneaky",
		Email:    "sneaky@example.com",
		Password: "Str0ngPass!x",
		Role:     models.UserRoleAdmin,
	})
	assert.ErrorContains(s.T(), err, "invalid role")
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.registerManufacturer("ops@glenfoyle.example")

	resp, err := s.svc.Login(&LoginRequest{
		Email:    "ops@glenfoyle.example",
		Password: "Str0ngPass!x",
	})
	s.Require().NoError(err)
	assert.NotEmpty(s.T(), resp.AccessToken)
	assert.NotNil(s.T(), resp.User.LastLoginAt)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	s.Require().NoError(err)
	assert.Equal(s.T(), resp.User.ID.String(), claims.UserID)
	assert.Equal(s.T(), string(models.UserRoleManufacturer), claims.Role)
}

func (s *AuthServiceTestSuite) TestLoginWrongPassword() {
	s.registerManufacturer("ops@glenfoyle.example")

	_, err := s.svc.Login(&LoginRequest{
		Email:    "ops@glenfoyle.example",
		Password: "WrongPass1!x",
	})
	assert.ErrorContains(s.T(), err, "invalid email or password")
}

func (s *AuthServiceTestSuite) TestLoginSuspendedAccount() {
	resp := s.registerManufacturer("ops@glenfoyle.example")
	s.Require().NoError(s.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err := s.svc.Login(&LoginRequest{
		Email:    "ops@glenfoyle.example",
		Password: "Str0ngPass!x",
	})
	assert.ErrorContains(s.T(), err, "suspended")
}

func (s *AuthServiceTestSuite) TestRefreshToken() {
	resp := s.registerManufacturer("ops@glenfoyle.example")

	refreshed, err := s.svc.RefreshToken(resp.RefreshToken)
	s.Require().NoError(err)
	assert.NotEmpty(s.T(), refreshed.AccessToken)
	assert.Equal(s.T(), resp.User.ID, refreshed.User.ID)

	_, err = s.svc.RefreshToken("not-a-token")
	assert.Error(s.T(), err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
