package auth_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"go-leavedesk/internal/auth"
	autherrors "go-leavedesk/internal/auth/errors"
	"go-leavedesk/internal/domain"
	"go-leavedesk/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	createFn      func(ctx context.Context, u *user.User) error
	findByIDFn    func(ctx context.Context, id string) (*user.User, error)
	findByEmailFn func(ctx context.Context, email string) (*user.User, error)
}

func (f *fakeUserRepository) WithTx(tx *sql.Tx) user.Repository { return f }

func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeUserRepository) FindAll(ctx context.Context) ([]user.User, error) { return nil, nil }

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindActiveManagers(ctx context.Context) ([]user.User, error) {
	return nil, nil
}

func (f *fakeUserRepository) Update(ctx context.Context, u *user.User) error { return nil }

func (f *fakeUserRepository) FindActor(ctx context.Context, id string) (domain.Actor, error) {
	return domain.Actor{}, gorm.ErrRecordNotFound
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores an employee with hashed password", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		repo.createFn = func(ctx context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleEmployee, u.Role)
			assert.Equal(t, 20, u.LeaveBalance)
			assert.True(t, u.IsActive)
			assert.NotEqual(t, "secret123", u.Password)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))
			return nil
		}

		resp, err := svc.Register(ctx, auth.RegisterRequest{
			Name:     "Jordan Smith",
			Email:    "jordan@example.com",
			Password: "secret123",
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleEmployee, resp.Role)
		assert.Equal(t, 20, resp.LeaveBalance)
	})

	t.Run("requested manager role is downgraded to employee", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		repo.createFn = func(ctx context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleEmployee, u.Role)
			return nil
		}

		resp, err := svc.Register(ctx, auth.RegisterRequest{
			Name:     "Kim Lee",
			Email:    "kim@example.com",
			Password: "secret123",
			Role:     domain.RoleManager,
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleEmployee, resp.Role)
	})

	t.Run("negative duplicate email", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		repo.createFn = func(ctx context.Context, u *user.User) error {
			return gorm.ErrDuplicatedKey
		}

		_, err := svc.Register(ctx, auth.RegisterRequest{
			Name:     "Dup",
			Email:    "dup@example.com",
			Password: "secret123",
		})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	activeUser := func(t *testing.T) *user.User {
		return &user.User{
			ID:           uuid.New(),
			Name:         "Jordan Smith",
			Email:        "jordan@example.com",
			Password:     hashPassword(t, "secret123"),
			Role:         domain.RoleEmployee,
			LeaveBalance: 20,
			IsActive:     true,
		}
	}

	t.Run("success returns a signed token carrying the user id", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		u := activeUser(t)
		repo.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
			assert.Equal(t, "jordan@example.com", email)
			return u, nil
		}

		token, resp, err := svc.Login(ctx, "jordan@example.com", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, u.ID.String(), resp.ID)

		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		assert.NoError(t, err)
		claims, ok := parsed.Claims.(jwt.MapClaims)
		assert.True(t, ok)
		assert.Equal(t, u.ID.String(), claims["user_id"])
		assert.Equal(t, domain.RoleEmployee, claims["role"])
	})

	t.Run("negative wrong password", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		repo.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
			return activeUser(t), nil
		}

		_, _, err := svc.Login(ctx, "jordan@example.com", "wrong")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative unknown email", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		_, _, err := svc.Login(ctx, "nobody@example.com", "secret123")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative disabled account", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		repo.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
			u := activeUser(t)
			u.IsActive = false
			return u, nil
		}

		_, _, err := svc.Login(ctx, "jordan@example.com", "secret123")

		assert.ErrorIs(t, err, autherrors.ErrAccountDisabled)
	})
}

func TestAuthService_GetMe(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &fakeUserRepository{}
		svc := auth.NewService(repo)

		id := uuid.New()
		repo.findByIDFn = func(ctx context.Context, targetID string) (*user.User, error) {
			assert.Equal(t, id.String(), targetID)
			return &user.User{
				ID:    id,
				Name:  "Jordan Smith",
				Email: "jordan@example.com",
				Role:  domain.RoleEmployee,
			}, nil
		}

		resp, err := svc.GetMe(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, id.String(), resp.ID)
		assert.Equal(t, "jordan@example.com", resp.Email)
	})

	t.Run("negative malformed id", func(t *testing.T) {
		svc := auth.NewService(&fakeUserRepository{})

		_, err := svc.GetMe(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := auth.NewService(&fakeUserRepository{})

		_, err := svc.GetMe(ctx, uuid.New().String())

		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})
}
