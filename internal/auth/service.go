package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/characters-analyzer/backend/internal/repo"
	"github.com/characters-analyzer/backend/internal/users"
	pkgAuth "github.com/characters-analyzer/backend/pkg/auth"
	"github.com/characters-analyzer/backend/pkg/auth/session"
	"github.com/characters-analyzer/backend/pkg/config"
	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/characters-analyzer/backend/pkg/logger"
	"github.com/characters-analyzer/backend/pkg/security"
	"github.com/google/uuid"
)

const (
	invalidCredentialsMessage = "incorrect username or password"
	credentialsMessage        = "could not validate credentials"
	expiredMessage            = "signature has expired"
	tokenTypeBearer           = "bearer"
)

// Service defines the behavior needed by the auth controllers and middleware.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*users.UserDTO, error)
	SignIn(ctx context.Context, req SignInRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Authenticate(ctx context.Context, token string, kind pkgAuth.TokenKind) (*models.User, error)
	SignOut(ctx context.Context, username string) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type sessionManager interface {
	Issue(ctx context.Context, username string) (pkgAuth.TokenPair, error)
	Validate(ctx context.Context, stored *string, presented string) error
	Rotate(ctx context.Context, username, presented string) (pkgAuth.TokenPair, error)
	Revoke(ctx context.Context, username string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	users       userRepository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
	// dummyHash is verified against when the username is unknown so both
	// failure paths cost one argon2 computation.
	dummyHash string
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	dummy, err := security.HashPassword(uuid.NewString(), params.PasswordConfig)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
		now:         time.Now,
		dummyHash:   dummy,
	}, nil
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*users.UserDTO, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     username,
		PasswordHash: hash,
		Email:        normalizeOptional(req.Email, true),
		Phone:        normalizeOptional(req.Phone, false),
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return users.FromModel(user), nil
}

func (s *service) SignIn(ctx context.Context, req SignInRequest) (*TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		_, _ = security.VerifyPassword(req.Password, s.dummyHash)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		_, _ = security.VerifyPassword(req.Password, s.dummyHash)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	s.maybeRehash(ctx, user, req.Password)
	return s.issue(ctx, user.Username)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	user, err := s.Authenticate(ctx, refreshToken, pkgAuth.KindRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.session.Validate(ctx, user.RefreshToken, refreshToken); err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, credentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate refresh token")
	}
	pair, err := s.session.Rotate(ctx, user.Username, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, credentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate refresh token")
	}
	return s.tokenResponse(pair), nil
}

// Authenticate resolves the user a token belongs to. Expired signatures are
// Forbidden; every other failure is Unauthorized.
func (s *service) Authenticate(ctx context.Context, token string, kind pkgAuth.TokenKind) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, credentialsMessage)
	}

	claims, err := pkgAuth.DecodeKind(s.jwtCfg, token, kind)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrTokenExpired) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, expiredMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, credentialsMessage)
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, credentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) SignOut(ctx context.Context, username string) error {
	if err := s.session.Revoke(ctx, username); err != nil {
		if repo.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, credentialsMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke refresh token")
	}
	return nil
}

func (s *service) issue(ctx context.Context, username string) (*TokenResponse, error) {
	pair, err := s.session.Issue(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue tokens")
	}
	return s.tokenResponse(pair), nil
}

func (s *service) tokenResponse(pair pkgAuth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(pair.AccessExpiresAt.Sub(s.now()).Round(time.Second).Seconds()),
	}
}

// maybeRehash upgrades a stored hash produced with outdated argon2 parameters.
// Failure is logged and does not fail the sign-in.
func (s *service) maybeRehash(ctx context.Context, user *models.User, password string) {
	if !security.NeedsRehash(user.PasswordHash, s.passwordCfg) {
		return
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithUsername(ctx, user.Username), "password rehash failed: "+err.Error())
	}
}

func normalizeOptional(value *string, lower bool) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	if lower {
		v = strings.ToLower(v)
	}
	return &v
}
