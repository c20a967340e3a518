package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/characters-analyzer/backend/internal/users"
	pkgAuth "github.com/characters-analyzer/backend/pkg/auth"
	"github.com/characters-analyzer/backend/pkg/auth/session"
	"github.com/characters-analyzer/backend/pkg/config"
	"github.com/characters-analyzer/backend/pkg/db/dbtest"
	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/characters-analyzer/backend/pkg/security"
	"github.com/google/uuid"
)

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                     "secret",
		Algorithm:                  "HS256",
		AccessTokenLifetimeMinutes: 30,
		RefreshTokenLifetimeDays:   7,
	}
}

func buildTestService(t *testing.T) (Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t))
	manager, err := session.NewManager(repo, testJWTConfig())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: manager,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordCfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func signUp(t *testing.T, svc Service, username, password string) {
	t.Helper()
	if _, err := svc.SignUp(context.Background(), SignUpRequest{Username: username, Password: password}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code, message string) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
	if message != "" && typed.Message() != message {
		t.Fatalf("expected message %q, got %q", message, typed.Message())
	}
}

func TestSignUpStoresHashedPassword(t *testing.T) {
	svc, repo := buildTestService(t)
	email := "  Ember@Example.com "

	dto, err := svc.SignUp(context.Background(), SignUpRequest{Username: "ember_fan", Password: "hunter22", Email: &email})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if dto.Username != "ember_fan" || dto.Email == nil || *dto.Email != "ember@example.com" {
		t.Fatalf("unexpected dto %+v", dto)
	}

	user, err := repo.FindByUsername(context.Background(), "ember_fan")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.PasswordHash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if ok, _ := security.VerifyPassword("hunter22", user.PasswordHash); !ok {
		t.Fatal("stored hash does not verify")
	}
}

func TestSignUpDuplicateUsernameConflicts(t *testing.T) {
	svc, _ := buildTestService(t)
	signUp(t, svc, "ember_fan", "hunter22")

	_, err := svc.SignUp(context.Background(), SignUpRequest{Username: "ember_fan", Password: "other-pass"})
	expectCode(t, err, pkgerrors.CodeConflict, `user with username="ember_fan" already exists`)
}

func TestSignInIssuesTokenPair(t *testing.T) {
	svc, repo := buildTestService(t)
	signUp(t, svc, "ember_fan", "hunter22")

	resp, err := svc.SignIn(context.Background(), SignInRequest{Username: "ember_fan", Password: "hunter22"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("unexpected token response %+v", resp)
	}
	if resp.ExpiresIn <= 0 || resp.ExpiresIn > int64((30*time.Minute).Seconds()) {
		t.Fatalf("unexpected expires_in %d", resp.ExpiresIn)
	}

	user, _ := repo.FindByUsername(context.Background(), "ember_fan")
	if user.RefreshToken == nil || *user.RefreshToken != resp.RefreshToken {
		t.Fatal("refresh token not persisted on the user row")
	}

	authed, err := svc.Authenticate(context.Background(), resp.AccessToken, pkgAuth.KindAccess)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("authenticated wrong user")
	}
}

func TestSignInFailuresAreUniform(t *testing.T) {
	svc, _ := buildTestService(t)
	signUp(t, svc, "ember_fan", "hunter22")

	_, wrongPassword := svc.SignIn(context.Background(), SignInRequest{Username: "ember_fan", Password: "nope"})
	expectCode(t, wrongPassword, pkgerrors.CodeUnauthorized, "incorrect username or password")

	_, unknownUser := svc.SignIn(context.Background(), SignInRequest{Username: "ghost", Password: "hunter22"})
	expectCode(t, unknownUser, pkgerrors.CodeUnauthorized, "incorrect username or password")

	_, blankPassword := svc.SignIn(context.Background(), SignInRequest{Username: "ember_fan"})
	expectCode(t, blankPassword, pkgerrors.CodeUnauthorized, "incorrect username or password")

	_, blankUsername := svc.SignIn(context.Background(), SignInRequest{Username: "  ", Password: "hunter22"})
	expectCode(t, blankUsername, pkgerrors.CodeUnauthorized, "incorrect username or password")
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := buildTestService(t)
	signUp(t, svc, "ember_fan", "hunter22")
	ctx := context.Background()

	first, err := svc.SignIn(ctx, SignInRequest{Username: "ember_fan", Password: "hunter22"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	// jti differs per mint, so the rotated token never equals the old one
	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	_, err = svc.Refresh(ctx, first.RefreshToken)
	expectCode(t, err, pkgerrors.CodeUnauthorized, "could not validate credentials")

	if _, err := svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Fatalf("latest refresh token should work: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := buildTestService(t)
	signUp(t, svc, "ember_fan", "hunter22")

	resp, err := svc.SignIn(context.Background(), SignInRequest{Username: "ember_fan", Password: "hunter22"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	_, err = svc.Refresh(context.Background(), resp.AccessToken)
	expectCode(t, err, pkgerrors.CodeUnauthorized, "could not validate credentials")
}

func TestAuthenticateStates(t *testing.T) {
	svc, _ := buildTestService(t)
	signUp(t, svc, "ember_fan", "hunter22")
	cfg := testJWTConfig()
	ctx := context.Background()

	expired, _, err := pkgAuth.Mint(cfg, time.Now().Add(-time.Hour), "ember_fan", pkgAuth.KindAccess)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = svc.Authenticate(ctx, expired, pkgAuth.KindAccess)
	expectCode(t, err, pkgerrors.CodeForbidden, "signature has expired")

	_, err = svc.Authenticate(ctx, "garbage", pkgAuth.KindAccess)
	expectCode(t, err, pkgerrors.CodeUnauthorized, "could not validate credentials")

	_, err = svc.Authenticate(ctx, "", pkgAuth.KindAccess)
	expectCode(t, err, pkgerrors.CodeUnauthorized, "could not validate credentials")

	ghost, _, err := pkgAuth.Mint(cfg, time.Now(), "ghost", pkgAuth.KindAccess)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = svc.Authenticate(ctx, ghost, pkgAuth.KindAccess)
	expectCode(t, err, pkgerrors.CodeUnauthorized, "could not validate credentials")
}

func TestSignOutRevokesRefreshToken(t *testing.T) {
	svc, _ := buildTestService(t)
	signUp(t, svc, "ember_fan", "hunter22")
	ctx := context.Background()

	resp, err := svc.SignIn(ctx, SignInRequest{Username: "ember_fan", Password: "hunter22"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := svc.SignOut(ctx, "ember_fan"); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	_, err = svc.Refresh(ctx, resp.RefreshToken)
	expectCode(t, err, pkgerrors.CodeUnauthorized, "")
}

func TestSignInRehashesOutdatedHash(t *testing.T) {
	svc, repo := buildTestService(t)
	weak := testPasswordCfg
	weak.ArgonMemoryKB = 512
	hash, err := security.HashPassword("hunter22", weak)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := repo.Create(context.Background(), users.CreateUserDTO{Username: "ember_fan", PasswordHash: hash}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SignIn(context.Background(), SignInRequest{Username: "ember_fan", Password: "hunter22"}); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	user, _ := repo.FindByUsername(context.Background(), "ember_fan")
	if security.NeedsRehash(user.PasswordHash, testPasswordCfg) {
		t.Fatal("expected hash to be upgraded")
	}
}

type brokenUserRepo struct{}

func (brokenUserRepo) Create(context.Context, users.CreateUserDTO) (*models.User, error) {
	return nil, errors.New("db down")
}

func (brokenUserRepo) FindByUsername(context.Context, string) (*models.User, error) {
	return nil, errors.New("db down")
}

func (brokenUserRepo) UpdatePasswordHash(context.Context, uuid.UUID, string) error {
	return errors.New("db down")
}

type noopSession struct{}

func (noopSession) Issue(context.Context, string) (pkgAuth.TokenPair, error) {
	return pkgAuth.TokenPair{}, nil
}
func (noopSession) Validate(context.Context, *string, string) error { return nil }
func (noopSession) Rotate(context.Context, string, string) (pkgAuth.TokenPair, error) {
	return pkgAuth.TokenPair{}, nil
}
func (noopSession) Revoke(context.Context, string) error { return nil }

func TestServiceSurfacesRepositoryFailuresAsInternal(t *testing.T) {
	svc, err := NewService(ServiceParams{
		UserRepo:       brokenUserRepo{},
		SessionManager: noopSession{},
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordCfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.SignIn(context.Background(), SignInRequest{Username: "ember_fan", Password: "x"})
	expectCode(t, err, pkgerrors.CodeInternal, "")

	_, err = svc.SignUp(context.Background(), SignUpRequest{Username: "ember_fan", Password: "hunter22"})
	expectCode(t, err, pkgerrors.CodeInternal, "")
}

func TestNewServiceValidatesParams(t *testing.T) {
	if _, err := NewService(ServiceParams{SessionManager: noopSession{}}); err == nil {
		t.Fatal("expected missing user repo to fail")
	}
	if _, err := NewService(ServiceParams{UserRepo: brokenUserRepo{}}); err == nil {
		t.Fatal("expected missing session manager to fail")
	}
}
