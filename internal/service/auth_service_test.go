package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sketchbin/internal/apperr"
	"sketchbin/internal/model"
	"sketchbin/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByNameOrEmail(ctx context.Context, nameOrEmail string) (*model.User, error) {
	args := m.Called(ctx, nameOrEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockCodeRepository is a mock implementation of CodeRepository.
type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) Create(ctx context.Context, code *model.OneTimeCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepository) HasActiveCode(ctx context.Context, userID uint, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockCodeRepository) Consume(ctx context.Context, code string) (uint, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockCodeRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func newTestAuthService(users *MockUserRepository, codes *MockCodeRepository, sessions *MockSessionRepository, mailer *MockMailer) AuthService {
	return NewAuthService(users, codes, sessions, mailer, nil)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	tests := []struct {
		name          string
		userName      string
		email         string
		expectedError error
	}{
		{"empty name", "", "a@b.com", apperr.ErrInvalidArgument},
		{"blank name", "   ", "a@b.com", apperr.ErrInvalidArgument},
		{"name too short", "abc", "a@b.com", apperr.ErrInvalidUserName},
		{"name too long", "abcdefghijklmnopqrstuvwxyz", "a@b.com", apperr.ErrInvalidUserName},
		{"name with space", "bad logic", "a@b.com", apperr.ErrInvalidUserName},
		{"name with symbol", "bad<logic", "a@b.com", apperr.ErrInvalidUserName},
		{"empty email", "badlogic", "", apperr.ErrInvalidArgument},
		{"malformed email", "badlogic", "not-an-address", apperr.ErrInvalidEmailAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), new(MockSessionRepository), new(MockMailer))
			err := svc.Signup(context.Background(), tt.userName, tt.email, model.UserTypeUser)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		userName      string
		email         string
		setupMock     func(*MockUserRepository, *MockCodeRepository, *MockMailer)
		expectedError error
	}{
		{
			name:     "name already taken",
			userName: "badlogic",
			email:    "a@b.com",
			setupMock: func(users *MockUserRepository, codes *MockCodeRepository, mailer *MockMailer) {
				users.On("FindByName", mock.Anything, "badlogic").Return(&model.User{ID: 1, Name: "badlogic"}, nil)
			},
			expectedError: apperr.ErrUserExists,
		},
		{
			name:     "email taken by another name",
			userName: "badlogic",
			email:    "a@b.com",
			setupMock: func(users *MockUserRepository, codes *MockCodeRepository, mailer *MockMailer) {
				users.On("FindByName", mock.Anything, "badlogic").Return(nil, gorm.ErrRecordNotFound)
				users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{ID: 2, Name: "someone", Email: "a@b.com"}, nil)
			},
			expectedError: apperr.ErrEmailExists,
		},
		{
			name:     "new user created and code emailed",
			userName: "badlogic",
			email:    "a@b.com",
			setupMock: func(users *MockUserRepository, codes *MockCodeRepository, mailer *MockMailer) {
				users.On("FindByName", mock.Anything, "badlogic").Return(nil, gorm.ErrRecordNotFound)
				users.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, gorm.ErrRecordNotFound)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				codes.On("HasActiveCode", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
				codes.On("Create", mock.Anything, mock.MatchedBy(func(c *model.OneTimeCode) bool {
					return len(c.Code) == 5
				})).Return(nil)
				mailer.On("Send", mock.Anything, "a@b.com", mock.Anything, mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "concurrent signup loses insert race",
			userName: "badlogic",
			email:    "a@b.com",
			setupMock: func(users *MockUserRepository, codes *MockCodeRepository, mailer *MockMailer) {
				users.On("FindByName", mock.Anything, "badlogic").Return(nil, gorm.ErrRecordNotFound)
				users.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, gorm.ErrRecordNotFound)
				users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperr.ErrConflict,
		},
		{
			name:     "active code window skips email",
			userName: "badlogic",
			email:    "a@b.com",
			setupMock: func(users *MockUserRepository, codes *MockCodeRepository, mailer *MockMailer) {
				users.On("FindByName", mock.Anything, "badlogic").Return(nil, gorm.ErrRecordNotFound)
				users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{ID: 3, Name: "badlogic", Email: "a@b.com"}, nil)
				codes.On("HasActiveCode", mock.Anything, uint(3), mock.Anything).Return(true, nil)
				// Neither a code insert nor a send may happen.
			},
			expectedError: nil,
		},
		{
			name:     "failed email rolls back the code",
			userName: "badlogic",
			email:    "a@b.com",
			setupMock: func(users *MockUserRepository, codes *MockCodeRepository, mailer *MockMailer) {
				users.On("FindByName", mock.Anything, "badlogic").Return(nil, gorm.ErrRecordNotFound)
				users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{ID: 3, Name: "badlogic", Email: "a@b.com"}, nil)
				codes.On("HasActiveCode", mock.Anything, uint(3), mock.Anything).Return(false, nil)
				codes.On("Create", mock.Anything, mock.AnythingOfType("*model.OneTimeCode")).Return(nil)
				mailer.On("Send", mock.Anything, "a@b.com", mock.Anything, mock.Anything).Return(assert.AnError)
				codes.On("DeleteByUserID", mock.Anything, uint(3)).Return(nil)
			},
			expectedError: apperr.ErrCouldNotSendEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			codes := new(MockCodeRepository)
			mailer := new(MockMailer)
			tt.setupMock(users, codes, mailer)

			svc := newTestAuthService(users, codes, new(MockSessionRepository), mailer)
			err := svc.Signup(context.Background(), tt.userName, tt.email, model.UserTypeUser)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			users.AssertExpectations(t)
			codes.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByNameOrEmail", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

		svc := newTestAuthService(users, new(MockCodeRepository), new(MockSessionRepository), new(MockMailer))
		err := svc.Login(context.Background(), "ghost")
		assert.ErrorIs(t, err, apperr.ErrUserDoesNotExist)
	})

	t.Run("empty input", func(t *testing.T) {
		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), new(MockSessionRepository), new(MockMailer))
		err := svc.Login(context.Background(), "  ")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("known user gets a code", func(t *testing.T) {
		users := new(MockUserRepository)
		codes := new(MockCodeRepository)
		mailer := new(MockMailer)
		users.On("FindByNameOrEmail", mock.Anything, "badlogic").Return(&model.User{ID: 7, Name: "badlogic", Email: "a@b.com"}, nil)
		codes.On("HasActiveCode", mock.Anything, uint(7), mock.Anything).Return(false, nil)
		codes.On("Create", mock.Anything, mock.AnythingOfType("*model.OneTimeCode")).Return(nil)
		mailer.On("Send", mock.Anything, "a@b.com", mock.Anything, mock.Anything).Return(nil)

		svc := newTestAuthService(users, codes, new(MockSessionRepository), mailer)
		assert.NoError(t, svc.Login(context.Background(), "badlogic"))
		mailer.AssertExpectations(t)
	})
}

func TestAuthService_VerifyCode(t *testing.T) {
	t.Run("empty code", func(t *testing.T) {
		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), new(MockSessionRepository), new(MockMailer))
		_, _, err := svc.VerifyCode(context.Background(), "   ")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("unknown code", func(t *testing.T) {
		codes := new(MockCodeRepository)
		codes.On("Consume", mock.Anything, "zzzzz").Return(uint(0), gorm.ErrRecordNotFound)

		svc := newTestAuthService(new(MockUserRepository), codes, new(MockSessionRepository), new(MockMailer))
		_, _, err := svc.VerifyCode(context.Background(), "zzzzz")
		assert.ErrorIs(t, err, apperr.ErrCouldNotVerifyCode)
	})

	t.Run("success issues a 32 character token", func(t *testing.T) {
		users := new(MockUserRepository)
		codes := new(MockCodeRepository)
		sessions := new(MockSessionRepository)
		codes.On("Consume", mock.Anything, "Ab3xZ").Return(uint(7), nil)
		sessions.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Session) bool {
			return s.UserID == 7 && len(s.Token) == 32
		})).Return(nil)
		users.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, Name: "badlogic"}, nil)

		svc := newTestAuthService(users, codes, sessions, new(MockMailer))
		token, name, err := svc.VerifyCode(context.Background(), "Ab3xZ")
		require.NoError(t, err)
		assert.Len(t, token, 32)
		assert.Equal(t, "badlogic", name)
	})

	t.Run("token collision is retried", func(t *testing.T) {
		users := new(MockUserRepository)
		codes := new(MockCodeRepository)
		sessions := new(MockSessionRepository)
		codes.On("Consume", mock.Anything, "Ab3xZ").Return(uint(7), nil)
		sessions.On("Create", mock.Anything, mock.AnythingOfType("*model.Session")).Return(gorm.ErrDuplicatedKey).Once()
		sessions.On("Create", mock.Anything, mock.AnythingOfType("*model.Session")).Return(nil).Once()
		users.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, Name: "badlogic"}, nil)

		svc := newTestAuthService(users, codes, sessions, new(MockMailer))
		token, _, err := svc.VerifyCode(context.Background(), "Ab3xZ")
		require.NoError(t, err)
		assert.Len(t, token, 32)
		sessions.AssertExpectations(t)
	})

	t.Run("session insert writing nothing fails verification", func(t *testing.T) {
		codes := new(MockCodeRepository)
		sessions := new(MockSessionRepository)
		codes.On("Consume", mock.Anything, "Ab3xZ").Return(uint(7), nil)
		sessions.On("Create", mock.Anything, mock.AnythingOfType("*model.Session")).Return(repository.ErrNoRowsAffected)

		svc := newTestAuthService(new(MockUserRepository), codes, sessions, new(MockMailer))
		_, _, err := svc.VerifyCode(context.Background(), "Ab3xZ")
		assert.ErrorIs(t, err, apperr.ErrCouldNotVerifyCode)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("revokes the session", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		sessions.On("DeleteByToken", mock.Anything, "sometoken").Return(nil)

		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), sessions, new(MockMailer))
		assert.NoError(t, svc.Logout(context.Background(), "sometoken"))
		sessions.AssertExpectations(t)
	})

	t.Run("unknown token is not an error", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		sessions.On("DeleteByToken", mock.Anything, "unknown").Return(nil)

		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), sessions, new(MockMailer))
		assert.NoError(t, svc.Logout(context.Background(), "unknown"))
	})

	t.Run("blank token is a no-op", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), sessions, new(MockMailer))
		assert.NoError(t, svc.Logout(context.Background(), "  "))
		sessions.AssertNotCalled(t, "DeleteByToken", mock.Anything, mock.Anything)
	})
}

func TestAuthService_GetUserForToken(t *testing.T) {
	t.Run("blank token", func(t *testing.T) {
		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), new(MockSessionRepository), new(MockMailer))
		_, err := svc.GetUserForToken(context.Background(), "   ")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("unknown token", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		sessions.On("FindUserByToken", mock.Anything, "unknown").Return(nil, gorm.ErrRecordNotFound)

		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), sessions, new(MockMailer))
		_, err := svc.GetUserForToken(context.Background(), "unknown")
		assert.ErrorIs(t, err, apperr.ErrUserDoesNotExist)
	})

	t.Run("resolves the owning user", func(t *testing.T) {
		sessions := new(MockSessionRepository)
		sessions.On("FindUserByToken", mock.Anything, "sometoken").Return(&model.User{ID: 7, Name: "badlogic"}, nil)

		svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), sessions, new(MockMailer))
		user, err := svc.GetUserForToken(context.Background(), "sometoken")
		require.NoError(t, err)
		assert.Equal(t, "badlogic", user.Name)
	})
}
