package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/amartel/rentaride-backend/pkg/auth"
	"github.com/amartel/rentaride-backend/pkg/config"
	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "rentaride",
		ExpirationMinutes: 30,
	}
}

func TestServiceLoginClient(t *testing.T) {
	password := "client-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "client@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Claire",
		LastName:     "Martin",
		Role:         enums.UserRoleClient,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, _, err := buildTestService(user, nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleClient {
		t.Fatalf("expected client role claim, got %s", claims.Role)
	}
	if claims.AgencyID != nil {
		t.Fatalf("expected no agency claim for client, got %v", claims.AgencyID)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if resp.Agency != nil {
		t.Fatalf("expected no agency in response for client")
	}
}

func TestServiceLoginAgencyCarriesAgencyClaim(t *testing.T) {
	password := "agency-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "agency@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Anne",
		LastName:     "Durand",
		Role:         enums.UserRoleAgency,
		IsActive:     true,
	}
	agency := &models.Agency{
		ID:      uuid.New(),
		OwnerID: user.ID,
		Name:    "Durand Mobilité",
	}
	cfg := testJWTConfig()

	svc, _, err := buildTestService(user, agency, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.AgencyID == nil || *claims.AgencyID != agency.ID {
		t.Fatalf("expected agency claim %s, got %v", agency.ID, claims.AgencyID)
	}
	if resp.Agency == nil || resp.Agency.ID != agency.ID {
		t.Fatalf("expected agency in response")
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "client@example.com",
		PasswordHash: mustHashPassword(t, "correct"),
		Role:         enums.UserRoleClient,
		IsActive:     true,
	}

	svc, _, err := buildTestService(user, nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginInactiveUser(t *testing.T) {
	password := "inactive"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "inactive@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleClient,
		IsActive:     false,
	}

	svc, _, err := buildTestService(user, nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleClient,
		JTI:    "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	svc, sessions, err := buildTestService(&models.User{ID: userID}, nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), accessToken, "refresh-token")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if sessions.rotatedFrom != "old-access-id" {
		t.Fatalf("expected rotation from old-access-id, got %q", sessions.rotatedFrom)
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected identity preserved across rotation")
	}
	if resp.RefreshToken != "rotated-refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, sessions, err := buildTestService(&models.User{ID: uuid.New()}, nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revoked != "access-id" {
		t.Fatalf("expected revoke of access-id, got %q", sessions.revoked)
	}
}

func buildTestService(user *models.User, agency *models.Agency, jwtCfg config.JWTConfig) (Service, *stubSessionManager, error) {
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		AgencyRepo:     stubAgencyRepo{agency: agency},
		SessionManager: sessionMgr,
		JWTConfig:      jwtCfg,
	})
	return svc, sessionMgr, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

type stubAgencyRepo struct {
	agency *models.Agency
}

func (s stubAgencyRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.Agency, error) {
	if s.agency == nil || s.agency.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.agency, nil
}

type stubSessionManager struct {
	refreshToken string
	rotatedFrom  string
	revoked      string
}

func (s *stubSessionManager) Generate(_ context.Context, _ string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, _ string) (string, string, error) {
	s.rotatedFrom = oldAccessID
	return "new-access-id", "rotated-refresh-token", nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
