package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/zfogg/aihub/backend/internal/errors"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/testutil"
)

// AuthServiceTestSuite contains auth service tests
type AuthServiceTestSuite struct {
	suite.Suite
	store       *store.Store
	authService *Service
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.store = testutil.NewStore(suite.T())
	suite.authService = NewService([]byte("test-secret"), time.Hour, suite.store.Users)
}

func (suite *AuthServiceTestSuite) TestRegisterAndLogin() {
	ctx := context.Background()

	resp, err := suite.authService.Register(ctx, RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), resp.Token)
	assert.Equal(suite.T(), "bearer", resp.TokenType)
	assert.NotEqual(suite.T(), "correct-horse", resp.User.PasswordHash)

	login, err := suite.authService.Login(ctx, LoginRequest{Username: "ALICE", Password: "correct-horse"})
	require.NoError(suite.T(), err)

	identity, err := suite.authService.ParseToken(login.Token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), resp.User.ID, identity.ID)
	assert.Equal(suite.T(), "alice", identity.Username)
	assert.False(suite.T(), identity.IsAdmin)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateUsername() {
	ctx := context.Background()
	req := RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "password1"}

	_, err := suite.authService.Register(ctx, req)
	require.NoError(suite.T(), err)

	req.Username = "Bob"
	_, err = suite.authService.Register(ctx, req)
	assert.ErrorIs(suite.T(), err, ErrUserExists)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	ctx := context.Background()
	_, err := suite.authService.Register(ctx, RegisterRequest{Username: "carol", Email: "c@example.com", Password: "password1"})
	require.NoError(suite.T(), err)

	_, err = suite.authService.Login(ctx, LoginRequest{Username: "carol", Password: "nope"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)

	_, err = suite.authService.Login(ctx, LoginRequest{Username: "nobody", Password: "nope"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func TestParseTokenCarriesAdminFlag(t *testing.T) {
	svc := NewService([]byte("secret"), time.Hour, nil)

	resp, err := svc.IssueToken(&models.User{Base: models.Base{ID: "u-1"}, Username: "root", IsAdmin: true})
	require.NoError(t, err)

	identity, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: "u-1", Username: "root", IsAdmin: true}, identity)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := NewService([]byte("secret"), time.Minute, nil)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	resp, err := svc.IssueToken(&models.User{Base: models.Base{ID: "u-1"}, Username: "a"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ParseToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsWrongSecretAndAlgorithm(t *testing.T) {
	svc := NewService([]byte("secret"), time.Hour, nil)
	other := NewService([]byte("other"), time.Hour, nil)

	resp, err := other.IssueToken(&models.User{Base: models.Base{ID: "u-1"}, Username: "a"})
	require.NoError(t, err)
	_, err = svc.ParseToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRequiresSubjectAndExpiry(t *testing.T) {
	svc := NewService([]byte("secret"), time.Hour, nil)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(&Identity{ID: "a", IsAdmin: true}))

	err := RequireAdmin(&Identity{ID: "u"})
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrForbidden, apiErr.Code)

	err = RequireAdmin(nil)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrUnauthenticated, apiErr.Code)
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	owner := &Identity{ID: "owner"}
	admin := &Identity{ID: "admin", IsAdmin: true}
	stranger := &Identity{ID: "stranger"}

	assert.NoError(t, RequireOwnerOrAdmin(owner, "owner"))
	assert.NoError(t, RequireOwnerOrAdmin(admin, "owner"))

	err := RequireOwnerOrAdmin(stranger, "owner")
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 403, apiErr.Status)

	// an empty owner id never matches a caller
	assert.Error(t, RequireOwnerOrAdmin(&Identity{ID: ""}, ""))
}
