package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/cryptox"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/auth"
	"github.com/dmitrijs2005/fintracker/internal/server/config"
	"github.com/dmitrijs2005/fintracker/internal/server/mailer"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
)

const (
	msgNotAuthenticated   = "Not authenticated"
	msgBadCredentials     = "Invalid username or password"
	msgCredentialsMissing = "Username and password are required"
	msgUserNotFound       = "User not found"
	msgBadResetToken      = "Invalid or expired reset token"
	msgWrongPassword      = "Current password is incorrect"
	msgCurrentPassword    = "Current password is required"
)

// errInvalidCredentials is returned for both unknown users and wrong
// passwords so the two cannot be told apart.
var errInvalidCredentials = &common.Error{Kind: common.ErrInvalidCredentials, Msg: msgBadCredentials}

// Session is an authenticated user plus the signed token for the cookie.
type Session struct {
	User  models.UserSummary
	Token string
}

// Identity is attached to authenticated requests.
type Identity struct {
	UserID   int64
	Username string
}

type RegisterInput struct {
	Username    string
	DisplayName string
	Password    string
	Email       string
}

// AuthService issues and verifies sessions and manages account credentials.
type AuthService struct {
	Deps
	codec  *cryptox.EmailCodec
	mailer mailer.Mailer

	jwtSecret       []byte
	sessionValidity time.Duration
	resetValidity   time.Duration
	bcryptCost      int
	appBaseURL      string

	// compared against when the user does not exist, to keep login timing flat
	dummyHash string
}

func NewAuthService(d Deps, cfg *config.Config, codec *cryptox.EmailCodec, m mailer.Mailer) (*AuthService, error) {
	dummy, err := cryptox.HashPassword("dummy-password-for-timing", cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		Deps:            d,
		codec:           codec,
		mailer:          m,
		jwtSecret:       []byte(cfg.JWTSecret),
		sessionValidity: cfg.SessionValidity,
		resetValidity:   cfg.ResetTokenValidity,
		bcryptCost:      cfg.BcryptCost,
		appBaseURL:      strings.TrimRight(cfg.AppBaseURL, "/"),
		dummyHash:       dummy,
	}, nil
}

// SessionValidity is the lifetime of issued tokens; the cookie max-age
// matches it.
func (s *AuthService) SessionValidity() time.Duration {
	return s.sessionValidity
}

func (s *AuthService) issue(u *models.User) (*Session, error) {
	token, err := auth.GenerateToken(u.ID, u.Username, u.TokenVersion, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{User: u.Summary(), Token: token}, nil
}

// Register creates the user, their workspace and the OWNER membership in one
// transaction and returns a session for the new user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if !validUsername(in.Username) {
		return nil, common.Validation(msgBadUsername)
	}
	displayName, ok := normalizeDisplayName(in.DisplayName)
	if !ok {
		return nil, common.Validation(msgBadDisplayName)
	}
	if !strongPassword(in.Password) {
		return nil, common.Validation(msgWeakPassword)
	}
	email := cryptox.NormalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, common.Validation(msgBadEmail)
	}

	hash, err := cryptox.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	encrypted, err := s.codec.Encrypt(email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       in.Username,
		DisplayName:    displayName,
		PasswordHash:   hash,
		EmailEncrypted: encrypted,
		EmailHash:      s.codec.Hash(email),
	}

	err = s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.Repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		ws, err := s.Repos.Workspaces(tx).Create(ctx, &models.Workspace{Balance: decimal.Zero})
		if err != nil {
			return err
		}
		return s.Repos.Members(tx).Add(ctx, ws.ID, user.ID, models.PermissionOwner)
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, common.Validation(msgCredentialsMissing)
	}

	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.ComparePassword(s.dummyHash, password)
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !cryptox.ComparePassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}
	return s.issue(user)
}

// Authenticate verifies the token and checks its version against the
// user's current one, so revoked sessions fail immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, common.Unauthorized(msgNotAuthenticated)
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.Unauthorized(msgNotAuthenticated)
	}

	version, err := s.Repos.Users(s.DB).GetTokenVersion(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(msgNotAuthenticated)
		}
		return nil, err
	}
	if version != claims.TokenVersion {
		return nil, common.Unauthorized(msgNotAuthenticated)
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// RevokeAll bumps the token version by one; every outstanding session dies.
func (s *AuthService) RevokeAll(ctx context.Context, userID int64) (int, error) {
	v, err := s.Repos.Users(s.DB).IncrementTokenVersion(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger().Info(ctx, "sessions revoked", "user_id", userID, "token_version", v)
	return v, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	_, err := s.RevokeAll(ctx, userID)
	return err
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*models.UserSummary, error) {
	u, err := s.Repos.Users(s.DB).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	sum := u.Summary()
	return &sum, nil
}

// ForgotPassword mails a reset link when the user exists and has an e-mail.
// It reports success in every other case too; storage and delivery
// problems are only logged.
func (s *AuthService) ForgotPassword(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return common.Validation("Username is required")
	}
	log := s.logger().With("op", "forgot_password")

	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			log.Error(ctx, "user lookup failed", "error", err)
		}
		return nil
	}
	if user.EmailEncrypted == "" {
		log.Info(ctx, "no e-mail on file", "user_id", user.ID)
		return nil
	}
	email, err := s.codec.Decrypt(user.EmailEncrypted)
	if err != nil {
		log.Error(ctx, "stored e-mail cannot be decrypted", "user_id", user.ID, "error", err)
		return nil
	}

	raw, hash, err := cryptox.NewResetToken()
	if err != nil {
		log.Error(ctx, "reset token generation failed", "user_id", user.ID, "error", err)
		return nil
	}
	now := s.now()
	err = s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.Repos.ResetTokens(tx)
		if err := repo.InvalidateForUser(ctx, user.ID, now); err != nil {
			return err
		}
		_, err := repo.Create(ctx, &models.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: hash,
			ExpiresAt: now.Add(s.resetValidity),
		})
		return err
	})
	if err != nil {
		log.Error(ctx, "reset token not stored", "user_id", user.ID, "error", err)
		return nil
	}

	link := s.appBaseURL + "/reset-password?token=" + url.QueryEscape(raw)
	if err := s.mailer.SendPasswordReset(ctx, email, link); err != nil {
		log.Warn(ctx, "reset e-mail not delivered", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token, stores the new password and revokes
// every session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return common.Validation(msgBadResetToken)
	}
	if !strongPassword(newPassword) {
		return common.Validation(msgWeakPassword)
	}
	hash, err := cryptox.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	now := s.now()

	var userID int64
	err = s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.Repos.ResetTokens(tx)
		t, err := tokens.GetByHash(ctx, cryptox.HashToken(token))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.Validation(msgBadResetToken)
			}
			return err
		}
		if !t.IsValid(now) {
			return common.Validation(msgBadResetToken)
		}
		ok, err := tokens.MarkUsed(ctx, t.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return common.Validation(msgBadResetToken)
		}
		userID = t.UserID
		_, err = s.Repos.Users(tx).UpdatePassword(ctx, t.UserID, hash)
		return err
	})
	if err != nil {
		return err
	}

	s.logger().Info(ctx, "password reset", "user_id", userID)
	return nil
}

// PurgeExpiredResetTokens deletes reset tokens that can no longer be used.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.Repos.ResetTokens(s.DB).DeleteExpired(ctx, s.now())
}

// ChangePassword re-verifies the current password, stores the new one and
// revokes all sessions. The returned session replaces the caller's cookie.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) (*Session, error) {
	if current == "" {
		return nil, common.Validation(msgCurrentPassword)
	}
	if !strongPassword(next) {
		return nil, common.Validation(msgWeakPassword)
	}

	user, err := s.Repos.Users(s.DB).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	if !cryptox.ComparePassword(user.PasswordHash, current) {
		return nil, &common.Error{Kind: common.ErrInvalidCredentials, Msg: msgWrongPassword}
	}

	hash, err := cryptox.HashPassword(next, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	version, err := s.Repos.Users(s.DB).UpdatePassword(ctx, userID, hash)
	if err != nil {
		return nil, err
	}
	user.PasswordHash, user.TokenVersion = hash, version
	return s.issue(user)
}

// MaskedEmail returns "" when the account has no e-mail.
func (s *AuthService) MaskedEmail(ctx context.Context, userID int64) (string, error) {
	user, err := s.Repos.Users(s.DB).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.NotFound(msgUserNotFound)
		}
		return "", err
	}
	if user.EmailEncrypted == "" {
		return "", nil
	}
	email, err := s.codec.Decrypt(user.EmailEncrypted)
	if err != nil {
		return "", err
	}
	return cryptox.MaskEmail(email), nil
}

// UpdateEmail re-verifies the password and stores the normalised address.
// It returns the masked new address.
func (s *AuthService) UpdateEmail(ctx context.Context, userID int64, currentPassword, newEmail string) (string, error) {
	if currentPassword == "" {
		return "", common.Validation(msgCurrentPassword)
	}
	email := cryptox.NormalizeEmail(newEmail)
	if !validEmail(email) {
		return "", common.Validation(msgBadEmail)
	}

	user, err := s.Repos.Users(s.DB).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.NotFound(msgUserNotFound)
		}
		return "", err
	}
	if !cryptox.ComparePassword(user.PasswordHash, currentPassword) {
		return "", &common.Error{Kind: common.ErrInvalidCredentials, Msg: msgWrongPassword}
	}

	encrypted, err := s.codec.Encrypt(email)
	if err != nil {
		return "", err
	}
	if err := s.Repos.Users(s.DB).UpdateEmail(ctx, userID, s.codec.Hash(email), encrypted); err != nil {
		return "", err
	}
	return cryptox.MaskEmail(email), nil
}
