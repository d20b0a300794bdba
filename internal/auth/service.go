package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/internal/entitlements"
	"github.com/orchardlabs/storefront-backend/internal/users"
	pkgauth "github.com/orchardlabs/storefront-backend/pkg/auth"
	"github.com/orchardlabs/storefront-backend/pkg/config"
	"github.com/orchardlabs/storefront-backend/pkg/db"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/security"
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

// LoginInput is the credential check payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Account is the client-safe projection of a user row.
type Account struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

// Session is the authenticated result handed back to clients.
type Session struct {
	AccessToken string  `json:"access_token"`
	User        Account `json:"user"`
}

// Service handles account signup and credential verification.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
}

type service struct {
	dbClient *db.Client
	users    *users.Repository
	records  *entitlements.Repository
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	logger   *logger.Logger
	now      func() time.Time
}

// NewService wires the auth service.
func NewService(
	dbClient *db.Client,
	userRepo *users.Repository,
	entitlementRepo *entitlements.Repository,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	logg *logger.Logger,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if entitlementRepo == nil {
		return nil, fmt.Errorf("entitlement repository required")
	}
	return &service{
		dbClient: dbClient,
		users:    userRepo,
		records:  entitlementRepo,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		logger:   logg,
		now:      time.Now,
	}, nil
}

// Register creates the account and its Free entitlement row in one
// transaction, then issues a session. Free carries zero quotas: the first
// store requires an upgrade.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).Create(ctx, &models.User{
			Email:        email,
			PasswordHash: hash,
			FullName:     strings.TrimSpace(input.FullName),
		})
		if err != nil {
			return err
		}
		_, err = s.records.WithTx(tx).Create(ctx, &models.Entitlement{
			UserID:                user.ID,
			PlanName:              enums.PlanFree,
			IsSubscribed:          false,
			SubscriptionStartDate: s.now().UTC(),
		})
		if err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: register account")
	}

	session, err := s.mintSession(created)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		lctx := s.logger.WithFields(ctx, map[string]any{"user_id": created.ID})
		s.logger.Info(lctx, "account registered")
	}
	return session, nil
}

// Login verifies the password against the stored Argon2id hash and issues a
// session. Unknown emails and wrong passwords return the same error.
func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load account")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		if s.logger != nil {
			lctx := s.logger.WithFields(ctx, map[string]any{"user_id": user.ID})
			s.logger.Warn(lctx, "failed login attempt")
		}
		return nil, invalidCredentials()
	}

	return s.mintSession(user)
}

func (s *service) mintSession(user *models.User) (*Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &Session{
		AccessToken: token,
		User: Account{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

// isUniqueViolation catches driver-specific duplicate key errors that GORM
// does not translate.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
