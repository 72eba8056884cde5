package domain

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/crypto"
	"github.com/campus-events/backend/pkg/enum"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const generatedCodeLength = 8

type DiscountDomain interface {
	Create(context.Context, *model.CreateDiscountRequest) (*model.CreateDiscountResponse, error)
	GetList(context.Context, *model.GetDiscountsRequest) (*model.GetDiscountsResponse, error)
	SetActive(context.Context, *model.SetDiscountActiveRequest) (*model.SetDiscountActiveResponse, error)
	PreviewPrice(context.Context, *model.PreviewPriceRequest) (*model.PreviewPriceResponse, error)
}

type discountDomain struct {
	discountRepo      repository.DiscountRepository
	eventRepo         repository.EventRepository
	eventRoleVerifier *common.EventRoleVerifier
}

func NewDiscountDomain(
	discountRepo repository.DiscountRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
) DiscountDomain {
	return &discountDomain{
		discountRepo:      discountRepo,
		eventRepo:         eventRepo,
		eventRoleVerifier: common.NewEventRoleVerifier(userRepo),
	}
}

func (d *discountDomain) Create(
	ctx context.Context, req *model.CreateDiscountRequest,
) (*model.CreateDiscountResponse, error) {
	event, err := d.getManagedEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	percentage := decimal.Zero
	if req.Percentage != "" {
		percentage, err = decimal.NewFromString(req.Percentage)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid percentage")
		}
	}

	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return nil, errorx.New(errorx.BadRequest, "Percentage must be between 0 and 100")
	}

	code := normalizeCode(req.Code)
	if code == "" {
		code = crypto.GenerateRandomAlphabet(generatedCodeLength)
	}

	_, err = d.discountRepo.GetByCode(ctx, event.ID, code)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Code %s already exists for this event", code)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get discount by code: %v", err)
		return nil, errorx.Unknown
	}

	discount := &entity.Discount{
		Base:       entity.Base{ID: uuid.NewString()},
		EventID:    event.ID,
		Code:       code,
		Percentage: percentage.Round(2),
		FlatAmount: req.FlatAmount,
		Active:     true,
	}

	if req.MaxUses != nil {
		discount.MaxUses = sql.NullInt64{Int64: *req.MaxUses, Valid: true}
	}

	if err := d.discountRepo.Create(ctx, discount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create discount: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.CreateDiscountResponse(model.ConvertDiscount(discount))
	return &resp, nil
}

func (d *discountDomain) GetList(
	ctx context.Context, req *model.GetDiscountsRequest,
) (*model.GetDiscountsResponse, error) {
	event, err := d.getManagedEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	discounts, err := d.discountRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get discounts: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Discount{}
	for i := range discounts {
		result = append(result, model.ConvertDiscount(&discounts[i]))
	}

	return &model.GetDiscountsResponse{Discounts: result}, nil
}

func (d *discountDomain) SetActive(
	ctx context.Context, req *model.SetDiscountActiveRequest,
) (*model.SetDiscountActiveResponse, error) {
	discount, err := d.discountRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found discount")
		}

		xcontext.Logger(ctx).Errorf("Cannot get discount: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.getManagedEvent(ctx, discount.EventID); err != nil {
		return nil, err
	}

	if err := d.discountRepo.UpdateActive(ctx, discount.ID, req.Active); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update discount: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SetDiscountActiveResponse{}, nil
}

// PreviewPrice resolves the price a ticket would be issued at without
// consuming a use of the code.
func (d *discountDomain) PreviewPrice(
	ctx context.Context, req *model.PreviewPriceRequest,
) (*model.PreviewPriceResponse, error) {
	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	groupType := entity.GroupSingle
	if req.GroupType != "" {
		groupType, err = enum.ToEnum[entity.GroupType](req.GroupType)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid group type %s", req.GroupType)
		}
	}

	if !event.AllowsTier(groupType) {
		return nil, errorx.New(errorx.TierNotAllowed, "Group type %s is not allowed for this event", groupType)
	}

	base := resolveBasePrice(ctx, event, groupType)
	resp := &model.PreviewPriceResponse{BasePrice: base, Price: base}

	discount, err := findDiscount(ctx, d.discountRepo, event.ID, req.Code)
	if err != nil {
		return nil, err
	}

	if discount != nil && !discountExhausted(discount) {
		resp.Price = applyDiscount(base, discount)
		resp.Applied = resp.Price < base
	}

	return resp, nil
}

func (d *discountDomain) getManagedEvent(ctx context.Context, eventID string) (*entity.Event, error) {
	event, err := d.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.eventRoleVerifier.Verify(ctx, event); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return event, nil
}

// findDiscount returns nil for an empty, unknown or inactive code.
func findDiscount(
	ctx context.Context, discountRepo repository.DiscountRepository, eventID, code string,
) (*entity.Discount, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, nil
	}

	discount, err := discountRepo.GetActiveByCode(ctx, eventID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get discount: %v", err)
		return nil, errorx.Unknown
	}

	return discount, nil
}
