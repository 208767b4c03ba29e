package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/opsdash/internal/audit"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*User), args.Error(1)
}

// TestPurpose: Validates hashing round-trip: the stored hash verifies the
// original password and rejects others.
func TestUser_Hasher_RoundTrip(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := hasher.Verify("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestPurpose: Validates that malformed stored hashes are reported as errors,
// not silent mismatches.
func TestUser_Hasher_MalformedHash(t *testing.T) {
	hasher := NewPasswordHasher()
	_, err := hasher.Verify("password", "not-a-hash")
	assert.Error(t, err)
}

// TestPurpose: Validates successful authentication and the login audit event.
func TestUser_Service_Authenticate(t *testing.T) {
	repo := new(mockUserRepo)
	hasher := NewPasswordHasher()
	service := NewService(repo, hasher, audit.NewSlogLogger())
	ctx := context.Background()

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	stored := &User{ID: "u-1", Email: "ana@example.com", Active: true, PasswordHash: hash}

	repo.On("GetByEmail", ctx, "ana@example.com").Return(stored, nil)

	u, err := service.Authenticate(ctx, " Ana@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	_, err = service.Authenticate(ctx, "ana@example.com", "bad-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestPurpose: Validates that unknown emails and inactive accounts are
// rejected without leaking which case occurred to the credentials error.
func TestUser_Service_Authenticate_Rejections(t *testing.T) {
	repo := new(mockUserRepo)
	hasher := NewPasswordHasher()
	service := NewService(repo, hasher, audit.NewSlogLogger())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, ErrUserNotFound)
	_, err := service.Authenticate(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	hash, _ := hasher.Hash("pass-12345")
	repo.On("GetByEmail", ctx, "off@example.com").Return(&User{ID: "u-2", Active: false, PasswordHash: hash}, nil)
	_, err = service.Authenticate(ctx, "off@example.com", "pass-12345")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

// TestPurpose: Validates partial update semantics for profile and
// notification preferences.
func TestUser_Service_Update_Partial(t *testing.T) {
	repo := new(mockUserRepo)
	service := NewService(repo, NewPasswordHasher(), audit.NewSlogLogger())
	ctx := context.Background()

	stored := &User{ID: "u-1", Email: "ana@example.com", Name: "Ana", Role: RoleOperator, Active: true}
	repo.On("GetByID", ctx, "u-1").Return(stored, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *User) bool {
		return u.Name == "Ana" && u.Role == RoleAdmin && u.Notifications.DailyDigest
	})).Return(nil)

	role := RoleAdmin
	prefs := Notifications{DailyDigest: true}
	updated, err := service.Update(ctx, "u-1", UpdateInput{Role: &role, Notifications: &prefs}, "admin-1")

	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, updated.Role)
	repo.AssertExpectations(t)
}

// TestPurpose: Validates role validation on create and update.
func TestUser_Service_InvalidRole(t *testing.T) {
	repo := new(mockUserRepo)
	service := NewService(repo, NewPasswordHasher(), audit.NewSlogLogger())
	ctx := context.Background()

	_, err := service.Create(ctx, "ana@example.com", "Ana", "superuser", "pass-12345")
	assert.Error(t, err)

	repo.On("GetByID", ctx, "u-1").Return(&User{ID: "u-1", Role: RoleViewer}, nil)
	bad := "root"
	_, err = service.Update(ctx, "u-1", UpdateInput{Role: &bad}, "admin-1")
	assert.Error(t, err)
}
