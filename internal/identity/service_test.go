package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]User), args.Error(1)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestRegisterHashesPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", time.Hour)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	managerID := uuid.New()
	user, err := service.Register(ctx, RegisterRequest{
		Username:  "aclerk",
		Password:  "hunter22",
		Role:      RoleClerk,
		ManagerID: &managerID,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
	assert.Equal(t, &managerID, user.ManagerID)
	mockRepo.AssertExpectations(t)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", time.Hour)

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "x", Password: "y", Role: Role("INTERN"),
	})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthenticateRoundTrip(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", time.Hour)
	ctx := context.Background()

	managerID := uuid.New()
	user := &User{
		ID:           uuid.New(),
		Username:     "aclerk",
		PasswordHash: hashOf(t, "hunter22"),
		Role:         RoleClerk,
		ManagerID:    &managerID,
	}
	mockRepo.On("GetByUsername", ctx, "aclerk").Return(user, nil)
	mockRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	token, got, err := service.Authenticate(ctx, "aclerk", "hunter22")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)

	actor, err := service.ParseToken(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, RoleClerk, actor.Role)
	assert.Equal(t, &managerID, actor.ManagerID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", time.Hour)
	ctx := context.Background()

	user := &User{ID: uuid.New(), Username: "aclerk", PasswordHash: hashOf(t, "hunter22"), Role: RoleClerk}
	mockRepo.On("GetByUsername", ctx, "aclerk").Return(user, nil)

	_, _, err := service.Authenticate(ctx, "aclerk", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", time.Hour)
	ctx := context.Background()

	mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, ErrUserNotFound)

	_, _, err := service.Authenticate(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseTokenRejectsForgery(t *testing.T) {
	mockRepo := new(MockRepository)
	ctx := context.Background()

	user := &User{ID: uuid.New(), Username: "aclerk", PasswordHash: hashOf(t, "pw"), Role: RoleClerk}
	mockRepo.On("GetByUsername", ctx, "aclerk").Return(user, nil)

	issuer := NewService(mockRepo, "secret-a", time.Hour)
	verifier := NewService(mockRepo, "secret-b", time.Hour)

	token, _, err := issuer.Authenticate(ctx, "aclerk", "pw")
	assert.NoError(t, err)

	_, err = verifier.ParseToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", -time.Minute)
	ctx := context.Background()

	user := &User{ID: uuid.New(), Username: "aclerk", PasswordHash: hashOf(t, "pw"), Role: RoleClerk}
	mockRepo.On("GetByUsername", ctx, "aclerk").Return(user, nil)

	token, _, err := service.Authenticate(ctx, "aclerk", "pw")
	assert.NoError(t, err)

	_, err = service.ParseToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
