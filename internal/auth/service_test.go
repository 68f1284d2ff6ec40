package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/workorder-tracker/internal/common"
	"github.com/joseph-ayodele/workorder-tracker/internal/entity"
	"github.com/joseph-ayodele/workorder-tracker/internal/repository"
)

type fakeUsers struct {
	byEmail map[string]*entity.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*entity.User{}}
}

func (f *fakeUsers) Create(_ context.Context, email, passwordHash, name string) (*entity.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, repository.ErrEmailExists
	}
	u := &entity.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, Name: name, CreatedAt: time.Now()}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

const goodPassword = "Str0ng!pass"

func TestService_RegisterRejectsBadInput(t *testing.T) {
	svc := NewService(newFakeUsers(), "secret", nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed email", "not-an-email", goodPassword},
		{"email without tld", "a@b", goodPassword},
		{"short password", "a@example.com", "Ab1!"},
		{"no uppercase", "a@example.com", "str0ng!pass"},
		{"no digit", "a@example.com", "Strong!pass"},
		{"no special character", "a@example.com", "Str0ngpass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, "")
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestService_RegisterHashesPassword(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(users, "secret", nil)

	u, err := svc.Register(context.Background(), "a@example.com", goodPassword, "Ada")
	require.NoError(t, err)
	assert.NotEqual(t, goodPassword, u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestService_AuthenticateAndVerifyRoundTrip(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(users, "secret", nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", goodPassword, "")
	require.NoError(t, err)

	principal, token, err := svc.Authenticate(ctx, "a@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, principal.ID)
	require.NotEmpty(t, token)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestService_AuthenticateFailures(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(users, "secret", nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@example.com", goodPassword, "")
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, "a@example.com", "Wr0ng!pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email reports the same error as a wrong password.
	_, _, err = svc.Authenticate(ctx, "b@example.com", goodPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_VerifyRejectsBadTokens(t *testing.T) {
	svc := NewService(newFakeUsers(), "secret", nil)

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed with a different secret.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_VerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService(newFakeUsers(), "secret", nil)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
