package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/internal/agencies"
	"github.com/amartel/rentaride-backend/internal/users"
	"github.com/amartel/rentaride-backend/pkg/config"
	"github.com/amartel/rentaride-backend/pkg/db"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/security"
)

// RegisterRequest contains the payload required for onboarding a new account.
// AgencyName is required when registering with the agency role.
type RegisterRequest struct {
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Phone      *string `json:"phone,omitempty"`
	Role       string  `json:"role" validate:"required"`
	AgencyName *string `json:"agency_name,omitempty"`
	City       *string `json:"city,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	role, err := enums.ParseUserRole(req.Role)
	if err != nil || role == enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	var agencyName string
	if role == enums.UserRoleAgency {
		if req.AgencyName == nil || strings.TrimSpace(*req.AgencyName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "agency_name is required for agency accounts")
		}
		agencyName = strings.TrimSpace(*req.AgencyName)
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		agencyRepo := agencies.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Role:         role,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if role == enums.UserRoleAgency {
			if _, err := agencyRepo.Create(ctx, agencies.CreateAgencyDTO{
				OwnerID: user.ID,
				Name:    agencyName,
				Phone:   req.Phone,
				City:    req.City,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create agency profile")
			}
		}

		return nil
	})
}
