package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaitlistDomain interface {
	Join(context.Context, *model.JoinWaitlistRequest) (*model.JoinWaitlistResponse, error)
	GetList(context.Context, *model.GetWaitlistRequest) (*model.GetWaitlistResponse, error)
	Leave(context.Context, *model.LeaveWaitlistRequest) (*model.LeaveWaitlistResponse, error)
}

type waitlistDomain struct {
	waitlistRepo      repository.WaitlistRepository
	eventRepo         repository.EventRepository
	ticketRepo        repository.TicketRepository
	userRepo          repository.UserRepository
	eventRoleVerifier *common.EventRoleVerifier
}

func NewWaitlistDomain(
	waitlistRepo repository.WaitlistRepository,
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	userRepo repository.UserRepository,
) WaitlistDomain {
	return &waitlistDomain{
		waitlistRepo:      waitlistRepo,
		eventRepo:         eventRepo,
		ticketRepo:        ticketRepo,
		userRepo:          userRepo,
		eventRoleVerifier: common.NewEventRoleVerifier(userRepo),
	}
}

// Join puts the user on the waitlist of a full event.
func (d *waitlistDomain) Join(
	ctx context.Context, req *model.JoinWaitlistRequest,
) (*model.JoinWaitlistResponse, error) {
	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if event.Status != entity.EventPublished {
		return nil, errorx.New(errorx.EventNotOpen, "Event is not open for registration")
	}

	if !event.IsFull() {
		return nil, errorx.New(errorx.BadRequest, "Event still has seats left")
	}

	userID := xcontext.RequestUserID(ctx)
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unauthenticated, "User is not valid")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	_, err = d.ticketRepo.GetByUserAndEvent(ctx, userID, event.ID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "User already holds a ticket for this event")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get ticket of user: %v", err)
		return nil, errorx.Unknown
	}

	_, err = d.waitlistRepo.Get(ctx, event.ID, userID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "User is already on the waitlist")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get waitlist entry: %v", err)
		return nil, errorx.Unknown
	}

	entry := &entity.WaitlistEntry{
		Base:    entity.Base{ID: uuid.NewString()},
		EventID: event.ID,
		UserID:  userID,
		Note:    strings.TrimSpace(req.Note),
	}

	if err := d.waitlistRepo.Create(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create waitlist entry: %v", err)
		return nil, errorx.Unknown
	}

	entry.User = *user
	resp := model.JoinWaitlistResponse(model.ConvertWaitlistEntry(entry))
	return &resp, nil
}

func (d *waitlistDomain) GetList(
	ctx context.Context, req *model.GetWaitlistRequest,
) (*model.GetWaitlistResponse, error) {
	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if err := d.eventRoleVerifier.Verify(ctx, event); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	entries, err := d.waitlistRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get waitlist: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.WaitlistEntry{}
	for i := range entries {
		result = append(result, model.ConvertWaitlistEntry(&entries[i]))
	}

	return &model.GetWaitlistResponse{Entries: result}, nil
}

func (d *waitlistDomain) Leave(
	ctx context.Context, req *model.LeaveWaitlistRequest,
) (*model.LeaveWaitlistResponse, error) {
	deleted, err := d.waitlistRepo.Delete(ctx, req.EventID, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete waitlist entry: %v", err)
		return nil, errorx.Unknown
	}

	if !deleted {
		return nil, errorx.New(errorx.NotFound, "User is not on the waitlist")
	}

	return &model.LeaveWaitlistResponse{}, nil
}

func (d *waitlistDomain) getEvent(ctx context.Context, eventID string) (*entity.Event, error) {
	event, err := d.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	return event, nil
}
