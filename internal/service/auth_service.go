package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/rs/zerolog"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
	"github.com/njprem/Todo_APP_BackEnd/internal/metrics"
	"github.com/njprem/Todo_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Todo_APP_BackEnd/internal/util"
)

const maxPasswordLength = 256

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, passwordRules()...),
	)
}

func passwordRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(1, maxPasswordLength)}
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

type AuthService struct {
	users   ports.UserRepository
	tokens  *util.JWTManager
	resets  *util.ResetTokenSigner
	mailer  PasswordResetSender
	metrics *metrics.Auth
	log     zerolog.Logger

	resetTTL      time.Duration
	resetLinkBase string
	now           func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	tokens *util.JWTManager,
	resets *util.ResetTokenSigner,
	mailer PasswordResetSender,
	m *metrics.Auth,
	logger zerolog.Logger,
	resetTTL time.Duration,
	resetLinkBase string,
) *AuthService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AuthService{
		users:         users,
		tokens:        tokens,
		resets:        resets,
		mailer:        mailer,
		metrics:       m,
		log:           logger.With().Str("component", "auth").Logger(),
		resetTTL:      resetTTL,
		resetLinkBase: strings.TrimRight(resetLinkBase, "/"),
		now:           time.Now,
	}
}

// Register creates an account. Duplicate usernames and emails are reported
// as ErrUsernameTaken and ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, in.Username, in.Email, hash)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "users_email_key" {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.Signup()
	s.log.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login checks the credentials and issues a bearer token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.Login("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			util.VerifyPassword(password, s.dummyPasswordHash())
			s.metrics.Login("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(password, user.PasswordHash) {
		s.metrics.Login("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if util.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	token, expiresAt, err := s.tokens.IssueWithEmail(user.Username, user.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.Login("success")
	return &LoginResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a bearer token to its user by subject, falling back
// to the email claim. It never mutates state.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.metrics.TokenRejected("missing")
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, util.ErrTokenExpired) {
			s.metrics.TokenRejected("expired")
		} else {
			s.metrics.TokenRejected("invalid")
		}
		return nil, ErrUnauthorized
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		subject = strings.TrimSpace(claims.Email)
	}
	if subject == "" {
		s.metrics.TokenRejected("malformed_claim")
		return nil, ErrMalformedClaim
	}

	var user *domain.User
	if strings.Contains(subject, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(subject))
	} else {
		user, err = s.users.FindByUsername(ctx, subject)
	}
	if err != nil {
		if isNotFound(err) {
			s.metrics.TokenRejected("user_not_found")
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password of an authenticated user after
// re-checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string) error {
	if user == nil {
		return ErrUnauthorized
	}
	if !util.VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := (validation.Errors{
		"new_password": validation.Validate(newPassword, passwordRules()...),
	}).Filter(); err != nil {
		return validationError(err)
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	s.log.Info().Str("user_id", user.ID.String()).Msg("password changed")
	return nil
}

// RequestPasswordReset issues a reset token for the account matching
// identifier (an email address or a username) and mails the reset link.
// Unknown identifiers succeed silently. When delivery fails the token is
// revoked and ErrDeliveryFailure is returned.
func (s *AuthService) RequestPasswordReset(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if err := (validation.Errors{
		"email": validation.Validate(identifier, validation.Required, validation.Length(1, 254)),
	}).Filter(); err != nil {
		return validationError(err)
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if isNotFound(err) {
			s.metrics.Reset("unknown_account")
			s.log.Debug().Msg("password reset requested for unknown account")
			return nil
		}
		return err
	}

	token, digest, err := s.resets.Generate()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, digest, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.deliver(ctx, user.Email, s.resetLinkBase+"/"+token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("password reset email not delivered")
		if clearErr := s.users.ClearResetToken(ctx, user.ID, digest); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID.String()).Msg("revoke undelivered reset token")
		}
		s.metrics.Reset("delivery_failed")
		return ErrDeliveryFailure
	}

	s.metrics.Reset("requested")
	s.log.Info().Str("user_id", user.ID.String()).Time("expires_at", expiresAt).Msg("password reset issued")
	return nil
}

// ResetPassword redeems token and sets newPassword in a single update. A
// token redeems at most once and only before its expiry.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if !util.ValidResetToken(token) {
		s.metrics.Reset("rejected")
		return nil, ErrInvalidOrExpiredResetToken
	}
	if err := (validation.Errors{
		"new_password": validation.Validate(newPassword, passwordRules()...),
	}).Filter(); err != nil {
		return nil, validationError(err)
	}

	digest := s.resets.Digest(token)
	pending, err := s.users.FindByResetToken(ctx, digest)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	if pending == nil || !pending.HasPendingReset(s.now()) {
		s.metrics.Reset("rejected")
		return nil, ErrInvalidOrExpiredResetToken
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err := s.users.ConsumeResetToken(ctx, digest, hash, s.now())
	if err != nil {
		if isNotFound(err) {
			s.metrics.Reset("rejected")
			return nil, ErrInvalidOrExpiredResetToken
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	s.metrics.Reset("redeemed")
	s.log.Info().Str("user_id", user.ID.String()).Msg("password reset completed")
	return user, nil
}

func (s *AuthService) deliver(ctx context.Context, email, link string) error {
	if s.mailer == nil {
		return errors.New("no password reset mailer configured")
	}
	return s.mailer.SendPasswordReset(ctx, email, link)
}

func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	hash, err := util.HashPassword(password)
	if err != nil {
		s.log.Warn().Err(err).Msg("rehash password")
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("store upgraded password hash")
		return
	}
	user.PasswordHash = hash
}

// dummyPasswordHash gives unknown-user logins the same hashing cost as real
// ones.
func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = util.HashPassword("not-a-real-password")
	})
	return s.dummyHash
}
