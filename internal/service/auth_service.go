package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	netmail "net/mail"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"sketchbin/internal/apperr"
	"sketchbin/internal/cache"
	"sketchbin/internal/mail"
	"sketchbin/internal/model"
	"sketchbin/internal/random"
	"sketchbin/internal/repository"
)

const (
	codeLength  = 5
	tokenLength = 32

	// codeResendWindow is the per-user issuance window: while a code younger
	// than this exists, signup/login neither create a new code nor send mail.
	codeResendWindow = 10 * time.Minute

	// sessionCacheTTL bounds staleness of cached token resolutions. Entries
	// are deleted eagerly on logout; the TTL only covers crash cleanup.
	sessionCacheTTL = 5 * time.Minute

	// maxTokenAttempts bounds retries on a session-token or project-code
	// collision. At 32 random base62 characters a single retry is already
	// astronomically unlikely.
	maxTokenAttempts = 3

	sessionCachePrefix = "session:"
)

// AuthService drives the signup, login, verify and logout flows.
type AuthService interface {
	// Signup registers name/email and emails a one-time code. For a known
	// name+email pair it behaves like a login (resend), creating no account.
	Signup(ctx context.Context, name, email string, userType model.UserType) error
	// Login emails a one-time code to an existing user, looked up by email
	// or name.
	Login(ctx context.Context, emailOrName string) error
	// VerifyCode exchanges a one-time code for a session token and the
	// owning user's name. The code and all its siblings are invalidated.
	VerifyCode(ctx context.Context, code string) (token, userName string, err error)
	// Logout revokes the session token. Unknown tokens are not an error.
	Logout(ctx context.Context, token string) error
	// GetUserForToken resolves a session token to its user.
	GetUserForToken(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	codes    repository.CodeRepository
	sessions repository.SessionRepository
	mailer   mail.Mailer
	cache    *cache.Client
}

// NewAuthService creates a new authentication service. The cache may be nil.
func NewAuthService(
	users repository.UserRepository,
	codes repository.CodeRepository,
	sessions repository.SessionRepository,
	mailer mail.Mailer,
	cacheClient *cache.Client,
) AuthService {
	return &authService{
		users:    users,
		codes:    codes,
		sessions: sessions,
		mailer:   mailer,
		cache:    cacheClient,
	}
}

// Signup validates the requested identity, then either resends a code to the
// matching existing account or creates the account and sends its first code.
func (s *authService) Signup(ctx context.Context, name, email string, userType model.UserType) error {
	name, err := validateUserName(name)
	if err != nil {
		return err
	}
	email, err = validateEmail(email)
	if err != nil {
		return err
	}

	// Advisory pre-checks; the unique indexes remain the authoritative guard.
	if _, err := s.users.FindByName(ctx, name); err == nil {
		return apperr.ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: find user by name: %v", apperr.ErrServer, err)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Name != name {
			return apperr.ErrEmailExists
		}
		// Same name and email: a returning user, resend instead of create.
		return s.sendCode(ctx, existing)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: find user by email: %v", apperr.ErrServer, err)
	}

	user := &model.User{Name: name, Email: email, Type: userType}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent signup won the insert race; which column fired
			// cannot be attributed here.
			return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
		}
		return fmt.Errorf("%w: create user: %v", apperr.ErrServer, err)
	}
	log.Printf("created user %s", user.Name)

	return s.sendCode(ctx, user)
}

// Login issues a code for an existing user identified by email or name.
func (s *authService) Login(ctx context.Context, emailOrName string) error {
	emailOrName = strings.TrimSpace(emailOrName)
	if emailOrName == "" {
		return fmt.Errorf("%w: email or name must not be empty", apperr.ErrInvalidArgument)
	}

	user, err := s.users.FindByNameOrEmail(ctx, emailOrName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUserDoesNotExist
		}
		return fmt.Errorf("%w: find user: %v", apperr.ErrServer, err)
	}

	return s.sendCode(ctx, user)
}

// sendCode issues a fresh one-time code and emails it. While the user still
// holds a code inside the resend window nothing is issued or sent, so rapid
// repeated signup/login attempts trigger at most one email. A code whose
// email could not be delivered is rolled back; an issued code must always
// have had its delivery attempted.
func (s *authService) sendCode(ctx context.Context, user *model.User) error {
	since := time.Now().Add(-codeResendWindow)
	active, err := s.codes.HasActiveCode(ctx, user.ID, since)
	if err != nil {
		return fmt.Errorf("%w: check active code: %v", apperr.ErrServer, err)
	}
	if active {
		return nil
	}

	code := &model.OneTimeCode{UserID: user.ID, Code: random.Generate(codeLength)}
	if err := s.codes.Create(ctx, code); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrCouldNotCreateCode, err)
	}

	msg := mail.CodeMessage{Name: user.Name, Code: code.Code}
	body, err := msg.Body()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrServer, err)
	}

	if err := s.mailer.Send(ctx, user.Email, msg.Subject(), body); err != nil {
		if delErr := s.codes.DeleteByUserID(ctx, user.ID); delErr != nil {
			log.Printf("rollback codes for user %d: %v", user.ID, delErr)
		}
		return fmt.Errorf("%w: %v", apperr.ErrCouldNotSendEmail, err)
	}
	return nil
}

// VerifyCode consumes the code and issues a session token. Consumption is
// atomic and exclusive at the storage layer, so a second concurrent call with
// the same code cannot also succeed.
func (s *authService) VerifyCode(ctx context.Context, code string) (string, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", "", fmt.Errorf("%w: code must not be empty", apperr.ErrInvalidArgument)
	}

	userID, err := s.codes.Consume(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperr.ErrCouldNotVerifyCode, err)
	}

	token, err := s.issueSession(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperr.ErrCouldNotVerifyCode, err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("%w: load user %d: %v", apperr.ErrServer, userID, err)
	}
	return token, user.Name, nil
}

// issueSession persists a fresh token, retrying on the (theoretical) token
// collision.
func (s *authService) issueSession(ctx context.Context, userID uint) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		session := &model.Session{UserID: userID, Token: random.Generate(tokenLength)}
		err := s.sessions.Create(ctx, session)
		if err == nil {
			return session.Token, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			lastErr = err
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("token collision persisted after %d attempts: %w", maxTokenAttempts, lastErr)
}

// Logout revokes the token. Idempotent: revoking an unknown or already
// revoked token succeeds.
func (s *authService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("%w: delete session: %v", apperr.ErrServer, err)
	}
	// Cache invalidation must not fail silently, otherwise a revoked token
	// would keep resolving until the TTL runs out.
	if err := s.cache.Delete(ctx, sessionCachePrefix+token); err != nil {
		return fmt.Errorf("%w: invalidate session cache: %v", apperr.ErrServer, err)
	}
	return nil
}

// GetUserForToken resolves a token, consulting the shared cache first. A
// missing session reports the user as missing: under the model invariants a
// token without a user cannot exist.
func (s *authService) GetUserForToken(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token must not be empty", apperr.ErrInvalidArgument)
	}

	key := sessionCachePrefix + token
	if data := s.cache.Get(ctx, key); data != nil {
		var user model.User
		if err := json.Unmarshal(data, &user); err == nil {
			return &user, nil
		}
	}

	user, err := s.sessions.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserDoesNotExist
		}
		return nil, fmt.Errorf("%w: resolve token: %v", apperr.ErrServer, err)
	}

	if data, err := json.Marshal(user); err == nil {
		s.cache.Set(ctx, key, data, sessionCacheTTL)
	}
	return user, nil
}

// validateUserName trims, escapes and checks the 4-25 letters/digits rule.
func validateUserName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: user name must not be empty", apperr.ErrInvalidArgument)
	}
	name = html.EscapeString(name)
	if len([]rune(name)) < 4 || len([]rune(name)) > 25 {
		return "", apperr.ErrInvalidUserName
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", apperr.ErrInvalidUserName
		}
	}
	return name, nil
}

// validateEmail trims, escapes and checks the address shape.
func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email must not be empty", apperr.ErrInvalidArgument)
	}
	email = html.EscapeString(email)
	if _, err := netmail.ParseAddress(email); err != nil {
		return "", apperr.ErrInvalidEmailAddress
	}
	return email, nil
}
