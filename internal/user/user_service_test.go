package user_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-leavedesk/internal/domain"
	"go-leavedesk/internal/user"
	usererrors "go-leavedesk/internal/user/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	withTxFn             func(tx *sql.Tx) user.Repository
	createFn             func(ctx context.Context, u *user.User) error
	findAllFn            func(ctx context.Context) ([]user.User, error)
	findByIDFn           func(ctx context.Context, id string) (*user.User, error)
	findByEmailFn        func(ctx context.Context, email string) (*user.User, error)
	findActiveManagersFn func(ctx context.Context) ([]user.User, error)
	updateFn             func(ctx context.Context, u *user.User) error
	findActorFn          func(ctx context.Context, id string) (domain.Actor, error)
}

func (f *fakeUserRepository) WithTx(tx *sql.Tx) user.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeUserRepository) FindAll(ctx context.Context) ([]user.User, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

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
	if f.findActiveManagersFn != nil {
		return f.findActiveManagersFn(ctx)
	}
	return nil, nil
}

func (f *fakeUserRepository) Update(ctx context.Context, u *user.User) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, u)
	}
	return nil
}

func (f *fakeUserRepository) FindActor(ctx context.Context, id string) (domain.Actor, error) {
	if f.findActorFn != nil {
		return f.findActorFn(ctx, id)
	}
	return domain.Actor{}, gorm.ErrRecordNotFound
}

type userServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service user.Service
	repo    *fakeUserRepository
}

func setupUserServiceTest(t *testing.T) *userServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeUserRepository{}
	svc := user.NewService(db, repo)

	return &userServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success with defaults", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		req := user.CreateUserRequest{
			Name:     "Jordan Smith",
			Email:    "jordan@example.com",
			Password: "secret123",
		}

		deps.repo.createFn = func(ctx context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleEmployee, u.Role)
			assert.Equal(t, "General", u.Department)
			assert.Equal(t, 20, u.LeaveBalance)
			assert.True(t, u.IsActive)
			assert.Nil(t, u.ManagerID)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))
			return nil
		}

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleEmployee, resp.Role)
		assert.Equal(t, 20, resp.LeaveBalance)
	})

	t.Run("success with explicit role and manager", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		managerID := uuid.New().String()
		balance := 12
		req := user.CreateUserRequest{
			Name:         "Kim Lee",
			Email:        "kim@example.com",
			Password:     "secret123",
			Role:         domain.RoleManager,
			Department:   "Engineering",
			LeaveBalance: &balance,
			ManagerID:    &managerID,
		}

		deps.repo.createFn = func(ctx context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleManager, u.Role)
			assert.Equal(t, "Engineering", u.Department)
			assert.Equal(t, 12, u.LeaveBalance)
			assert.NotNil(t, u.ManagerID)
			assert.Equal(t, managerID, u.ManagerID.String())
			return nil
		}

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleManager, resp.Role)
	})

	t.Run("negative duplicate email", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		deps.repo.createFn = func(ctx context.Context, u *user.User) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_user_email"}
		}

		_, err := deps.service.Create(ctx, user.CreateUserRequest{
			Name:     "Dup",
			Email:    "dup@example.com",
			Password: "secret123",
		})

		assert.ErrorIs(t, err, usererrors.ErrEmailAlreadyExists)
	})

	t.Run("negative malformed manager id", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		bad := "not-a-uuid"
		_, err := deps.service.Create(ctx, user.CreateUserRequest{
			Name:      "Bad",
			Email:     "bad@example.com",
			Password:  "secret123",
			ManagerID: &bad,
		})

		assert.ErrorIs(t, err, usererrors.ErrInvalidManagerID)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()

	t.Run("success patches only provided fields", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		role := domain.RoleManager
		balance := 15
		patch := user.UpdateUserPatch{
			Role:         &role,
			LeaveBalance: &balance,
		}

		deps.repo.findByIDFn = func(ctx context.Context, targetID string) (*user.User, error) {
			return &user.User{
				ID:           uuid.MustParse(targetID),
				Name:         "Jordan Smith",
				Email:        "jordan@example.com",
				Role:         domain.RoleEmployee,
				Department:   "General",
				LeaveBalance: 20,
				IsActive:     true,
			}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleManager, u.Role)
			assert.Equal(t, 15, u.LeaveBalance)
			assert.Equal(t, "Jordan Smith", u.Name)
			assert.Equal(t, "jordan@example.com", u.Email)
			return nil
		}

		resp, err := deps.service.Update(ctx, id, patch)

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleManager, resp.Role)
		assert.Equal(t, 15, resp.LeaveBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("empty manager id clears the assignment", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		empty := ""
		mid := uuid.New()
		patch := user.UpdateUserPatch{ManagerID: &empty}

		deps.repo.findByIDFn = func(ctx context.Context, targetID string) (*user.User, error) {
			return &user.User{
				ID:        uuid.MustParse(targetID),
				Role:      domain.RoleEmployee,
				ManagerID: &mid,
				IsActive:  true,
			}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, u *user.User) error {
			assert.Nil(t, u.ManagerID)
			return nil
		}

		resp, err := deps.service.Update(ctx, id, patch)

		assert.NoError(t, err)
		assert.Nil(t, resp.ManagerID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, targetID string) (*user.User, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Update(ctx, id, user.UpdateUserPatch{})

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestUserService_ToggleStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()

	t.Run("success disables active employee", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, targetID string) (*user.User, error) {
			return &user.User{
				ID:       uuid.MustParse(targetID),
				Role:     domain.RoleEmployee,
				IsActive: true,
			}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, u *user.User) error {
			assert.False(t, u.IsActive)
			return nil
		}

		resp, err := deps.service.ToggleStatus(ctx, id)

		assert.NoError(t, err)
		assert.False(t, resp.IsActive)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative admin cannot be disabled", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, targetID string) (*user.User, error) {
			return &user.User{
				ID:       uuid.MustParse(targetID),
				Role:     domain.RoleAdmin,
				IsActive: true,
			}, nil
		}

		_, err := deps.service.ToggleStatus(ctx, id)

		assert.ErrorIs(t, err, usererrors.ErrCannotDisableAdmin)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestUserService_GetManagers(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		deps.repo.findActiveManagersFn = func(ctx context.Context) ([]user.User, error) {
			return []user.User{
				{ID: uuid.New(), Name: "Alex", Role: domain.RoleManager, IsActive: true},
			}, nil
		}

		resp, err := deps.service.GetManagers(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, domain.RoleManager, resp[0].Role)
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		deps.repo.findActiveManagersFn = func(ctx context.Context) ([]user.User, error) {
			return nil, errors.New("db error")
		}

		resp, err := deps.service.GetManagers(ctx)

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}
