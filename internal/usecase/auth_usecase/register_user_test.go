package auth_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// loaderを素通しするキャッシュ
type passthroughCache struct{}

func (c *passthroughCache) GetOrLoad(ctx context.Context, _ string, _ time.Duration, loader func(ctx context.Context) (bool, error)) (bool, error) {
	return loader(ctx)
}

func (c *passthroughCache) Invalidate(_ context.Context, _ string) error { return nil }

type hasherStub struct{}

func (h *hasherStub) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newRegisterUC(repoMock *userRepoMock) *auth.RegisterUserUsecase {
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return auth.NewRegisterUserUsecase(repoMock, &passthroughCache{}, &hasherStub{}, clock)
}

func TestRegisterUser_Success(t *testing.T) {
	repoMock := new(userRepoMock)
	uc := newRegisterUC(repoMock)

	repoMock.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	repoMock.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@example.com" &&
			u.PasswordHash == "hashed:correct-horse-battery" &&
			u.Role == model.RoleUser &&
			u.IsActive
	})).Return(nil)

	out, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "new@example.com",
		Password: "correct-horse-battery",
		FullName: "Tran Van A",
	})
	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", out.User.Email)

	// レスポンスにハッシュを出さない
	assert.Empty(t, out.User.PasswordHash)
	repoMock.AssertExpectations(t)
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	uc := newRegisterUC(new(userRepoMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "not-an-email",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat)
}

func TestRegisterUser_PasswordTooShort(t *testing.T) {
	uc := newRegisterUC(new(userRepoMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "a@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterUser_WeakPassword(t *testing.T) {
	uc := newRegisterUC(new(userRepoMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "a@example.com",
		Password: "123456789012",
	})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	repoMock := new(userRepoMock)
	uc := newRegisterUC(repoMock)

	repoMock.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "taken@example.com",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	repoMock.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
