package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/enum"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	UpdateMe(context.Context, *model.UpdateMeRequest) (*model.UpdateMeResponse, error)
	RequestUpgrade(context.Context, *model.RequestUpgradeRequest) (*model.RequestUpgradeResponse, error)
	GetUpgradeRequests(context.Context, *model.GetUpgradeRequestsRequest) (*model.GetUpgradeRequestsResponse, error)
	ReviewUpgrade(context.Context, *model.ReviewUpgradeRequest) (*model.ReviewUpgradeResponse, error)
}

type userDomain struct {
	userRepo           repository.UserRepository
	upgradeRepo        repository.UpgradeRequestRepository
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewUserDomain(
	userRepo repository.UserRepository,
	upgradeRepo repository.UpgradeRequestRepository,
) UserDomain {
	return &userDomain{
		userRepo:           userRepo,
		upgradeRepo:        upgradeRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetMeResponse(model.ConvertUser(user, true))
	return &resp, nil
}

func (d *userDomain) UpdateMe(ctx context.Context, req *model.UpdateMeRequest) (*model.UpdateMeResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	err := d.userRepo.UpdateByID(ctx, userID, &entity.User{
		Name:       strings.TrimSpace(req.Name),
		RollNumber: strings.TrimSpace(req.RollNumber),
		Phone:      strings.TrimSpace(req.Phone),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update user: %v", err)
		return nil, errorx.Unknown
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.UpdateMeResponse(model.ConvertUser(user, true))
	return &resp, nil
}

func (d *userDomain) RequestUpgrade(
	ctx context.Context, req *model.RequestUpgradeRequest,
) (*model.RequestUpgradeResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.RoleStudent); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only students can request an upgrade")
	}

	userID := xcontext.RequestUserID(ctx)
	_, err := d.upgradeRepo.GetPendingByUserID(ctx, userID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "There is already a pending request")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get pending upgrade request: %v", err)
		return nil, errorx.Unknown
	}

	request := &entity.UpgradeRequest{
		Base:   entity.Base{ID: uuid.NewString()},
		UserID: userID,
		Reason: strings.TrimSpace(req.Reason),
		Status: entity.UpgradePending,
	}

	if err := d.upgradeRepo.Create(ctx, request); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create upgrade request: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RequestUpgradeResponse{ID: request.ID}, nil
}

func (d *userDomain) GetUpgradeRequests(
	ctx context.Context, req *model.GetUpgradeRequestsRequest,
) (*model.GetUpgradeRequestsResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	var status entity.UpgradeRequestStatus
	if req.Status != "" {
		var err error
		status, err = enum.ToEnum[entity.UpgradeRequestStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}
	}

	limit, err := checkLimit(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	requests, err := d.upgradeRepo.GetList(ctx, status, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get upgrade requests: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.UpgradeRequest{}
	for i := range requests {
		result = append(result, model.ConvertUpgradeRequest(&requests[i]))
	}

	return &model.GetUpgradeRequestsResponse{Requests: result}, nil
}

func (d *userDomain) ReviewUpgrade(
	ctx context.Context, req *model.ReviewUpgradeRequest,
) (*model.ReviewUpgradeResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	var status entity.UpgradeRequestStatus
	switch req.Action {
	case "approve":
		status = entity.UpgradeApproved
	case "reject":
		status = entity.UpgradeRejected
	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid action %s", req.Action)
	}

	request, err := d.upgradeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found upgrade request")
		}

		xcontext.Logger(ctx).Errorf("Cannot get upgrade request: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.upgradeRepo.Review(ctx, request.ID, xcontext.RequestUserID(ctx), status, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, errorx.New(errorx.BadRequest, "Upgrade request must be pending")
		}

		xcontext.Logger(ctx).Errorf("Cannot review upgrade request: %v", err)
		return nil, errorx.Unknown
	}

	if status == entity.UpgradeApproved {
		if err := d.userRepo.UpdateRole(ctx, request.UserID, entity.RoleCommittee); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot promote user: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ReviewUpgradeResponse{}, nil
}
