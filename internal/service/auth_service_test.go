package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type fakeUserRepo struct {
	user          *models.User
	linkedStudent string
	tokens        map[string]*models.RefreshToken
	revoked       []string
}

func newFakeUserRepo(user *models.User) *fakeUserRepo {
	return &fakeUserRepo{user: user, tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if f.user == nil || f.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) FindLinkedStudentID(_ context.Context, userID string) (string, error) {
	if f.user == nil || f.user.ID != userID {
		return "", nil
	}
	return f.linkedStudent, nil
}

func (f *fakeUserRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (f *fakeUserRepo) UpdatePassword(context.Context, string, string, time.Time) error { return nil }

func (f *fakeUserRepo) RevokeUserRefreshTokens(context.Context, string) error { return nil }

func (f *fakeUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := f.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (f *fakeUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	f.revoked = append(f.revoked, id)
	for _, token := range f.tokens {
		if token.ID == id {
			token.Revoked = true
		}
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "student-records-api",
	}
}

func testUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Username:     "asha",
		Email:        "asha@example.edu",
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Active:       true,
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	repo := newFakeUserRepo(testUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, models.RoleStudent, result.User.Role)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "asha", claims.Username)
}

func TestLoginEmbedsLinkedStudentClaim(t *testing.T) {
	repo := newFakeUserRepo(testUser(t))
	repo.linkedStudent = "s1"
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.StudentID)
}

func TestLoginOmitsStudentClaimForStaff(t *testing.T) {
	user := testUser(t)
	user.Role = models.RoleAdmin
	repo := newFakeUserRepo(user)
	repo.linkedStudent = "s1"
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Empty(t, claims.StudentID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo(testUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := testUser(t)
	user.Active = false
	svc := NewAuthService(newFakeUserRepo(user), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newFakeUserRepo(testUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err, "a used refresh token cannot be replayed")
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(testUser(t)), nil, nil, testAuthConfig())
	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	require.NoError(t, err)

	other := NewAuthService(newFakeUserRepo(testUser(t)), nil, nil, AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
