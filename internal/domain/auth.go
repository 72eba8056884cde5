package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthDomain interface {
	Register(context.Context, *model.RegisterRequest) (*model.RegisterResponse, error)
	Login(context.Context, *model.LoginRequest) (*model.LoginResponse, error)
}

type authDomain struct {
	hasAdmin      atomic.Bool
	hasAdminMutex sync.Mutex

	userRepo repository.UserRepository
}

func NewAuthDomain(userRepo repository.UserRepository) AuthDomain {
	return &authDomain{userRepo: userRepo}
}

func (d *authDomain) Register(
	ctx context.Context, req *model.RegisterRequest,
) (*model.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	_, err := d.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Email is already registered")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get user by email: %v", err)
		return nil, errorx.Unknown
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), xcontext.Configs(ctx).Auth.BcryptCost)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash password: %v", err)
		return nil, errorx.Unknown
	}

	user := &entity.User{
		Base:         entity.Base{ID: uuid.NewString()},
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		RollNumber:   strings.TrimSpace(req.RollNumber),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         entity.RoleStudent,
	}

	if err := d.createUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := generateAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &model.RegisterResponse{AccessToken: token, User: model.ConvertUser(user, true)}, nil
}

func (d *authDomain) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := d.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid email or password")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user by email: %v", err)
		return nil, errorx.Unknown
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		xcontext.Logger(ctx).Debugf("Password mismatch for user %s", user.ID)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid email or password")
	}

	token, err := generateAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{AccessToken: token, User: model.ConvertUser(user, true)}, nil
}

// createUser makes the very first account of the platform an admin.
func (d *authDomain) createUser(ctx context.Context, user *entity.User) error {
	if !d.hasAdmin.Load() {
		d.hasAdminMutex.Lock()
		defer d.hasAdminMutex.Unlock()

		if !d.hasAdmin.Load() {
			count, err := d.userRepo.Count(ctx)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot count number of user records: %v", err)
				return errorx.Unknown
			}

			if count == 0 {
				user.Role = entity.RoleAdmin
			}
		}
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return errorx.New(errorx.AlreadyExists, "Email is already registered")
		}

		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return errorx.Unknown
	}

	d.hasAdmin.Store(true)
	return nil
}

func generateAccessToken(ctx context.Context, user *entity.User) (string, error) {
	token, err := xcontext.TokenEngine(ctx).Generate(
		xcontext.Configs(ctx).Auth.AccessToken.Expiration.Duration,
		model.AccessToken{
			ID:   user.ID,
			Name: user.Name,
			Role: string(user.Role),
		})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return "", errorx.Unknown
	}

	return token, nil
}
