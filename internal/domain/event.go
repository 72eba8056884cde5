package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/domain/search"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/enum"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/storage"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/fatih/structs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventDomain interface {
	Create(context.Context, *model.CreateEventRequest) (*model.CreateEventResponse, error)
	Update(context.Context, *model.UpdateEventRequest) (*model.UpdateEventResponse, error)
	Delete(context.Context, *model.DeleteEventRequest) (*model.DeleteEventResponse, error)
	Get(context.Context, *model.GetEventRequest) (*model.GetEventResponse, error)
	GetList(context.Context, *model.GetEventsRequest) (*model.GetEventsResponse, error)
	GetMyEvents(context.Context, *model.GetMyEventsRequest) (*model.GetMyEventsResponse, error)
	UploadPoster(context.Context, *model.UploadEventPosterRequest) (*model.UploadEventPosterResponse, error)
	RebuildIndex(context.Context) error
}

type eventDomain struct {
	eventRepo          repository.EventRepository
	globalRoleVerifier *common.GlobalRoleVerifier
	eventRoleVerifier  *common.EventRoleVerifier
	searchIndex        search.Index
	storage            storage.Storage
}

func NewEventDomain(
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	searchIndex search.Index,
	storage storage.Storage,
) EventDomain {
	return &eventDomain{
		eventRepo:          eventRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
		eventRoleVerifier:  common.NewEventRoleVerifier(userRepo),
		searchIndex:        searchIndex,
		storage:            storage,
	}
}

// eventChanges holds the plain columns of a partial event update.
type eventChanges struct {
	Title       string             `structs:"title,omitempty"`
	Description string             `structs:"description,omitempty"`
	Venue       string             `structs:"venue,omitempty"`
	StartTime   time.Time          `structs:"start_time,omitnested,omitempty"`
	EndTime     time.Time          `structs:"end_time,omitnested,omitempty"`
	Status      entity.EventStatus `structs:"status,omitempty"`
}

func (d *eventDomain) Create(
	ctx context.Context, req *model.CreateEventRequest,
) (*model.CreateEventResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.OrganizerRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only committee members can create events")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errorx.New(errorx.BadRequest, "Title is required")
	}

	startTime, err := parseTime("start_time", req.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := parseTime("end_time", req.EndTime)
	if err != nil {
		return nil, err
	}

	if !endTime.After(startTime) {
		return nil, errorx.New(errorx.BadRequest, "End time must be after start time")
	}

	event := &entity.Event{
		Base:        entity.Base{ID: uuid.NewString()},
		CreatedBy:   xcontext.RequestUserID(ctx),
		Title:       title,
		Description: req.Description,
		Venue:       req.Venue,
		StartTime:   startTime,
		EndTime:     endTime,
		Status:      entity.EventDraft,
	}

	if err := applyEventInput(event, &req.EventInput); err != nil {
		return nil, err
	}

	if err := d.eventRepo.Create(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create event: %v", err)
		return nil, errorx.Unknown
	}

	d.index(ctx, event)

	return &model.CreateEventResponse{ID: event.ID}, nil
}

func (d *eventDomain) Update(
	ctx context.Context, req *model.UpdateEventRequest,
) (*model.UpdateEventResponse, error) {
	event, err := d.getEvent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.eventRoleVerifier.Verify(ctx, event); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	changes := eventChanges{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Venue:       req.Venue,
	}

	if req.StartTime != "" {
		if changes.StartTime, err = parseTime("start_time", req.StartTime); err != nil {
			return nil, err
		}
	}

	if req.EndTime != "" {
		if changes.EndTime, err = parseTime("end_time", req.EndTime); err != nil {
			return nil, err
		}
	}

	start, end := event.StartTime, event.EndTime
	if !changes.StartTime.IsZero() {
		start = changes.StartTime
	}

	if !changes.EndTime.IsZero() {
		end = changes.EndTime
	}

	if !end.After(start) {
		return nil, errorx.New(errorx.BadRequest, "End time must be after start time")
	}

	if req.Status != "" {
		if changes.Status, err = enum.ToEnum[entity.EventStatus](req.Status); err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}
	}

	updates := structs.Map(changes)

	if req.Capacity != nil {
		if *req.Capacity < event.IssuedCount {
			return nil, errorx.New(errorx.BadRequest,
				"Capacity cannot be lower than issued tickets (%d)", event.IssuedCount)
		}
		updates["capacity"] = *req.Capacity
	} else if req.ClearCapacity {
		updates["capacity"] = nil
	}

	if req.Price != nil {
		updates["price"] = *req.Price
	}

	if req.PriceSingle != nil {
		updates["price_single"] = *req.PriceSingle
	}

	if req.PriceDuo != nil {
		updates["price_duo"] = *req.PriceDuo
	}

	if req.PriceTrio != nil {
		updates["price_trio"] = *req.PriceTrio
	}

	if req.Tiers != nil {
		tiers, err := parseTiers(req.Tiers)
		if err != nil {
			return nil, err
		}
		updates["allowed_tiers"] = tiers
	}

	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if req.PaymentDetails != nil {
		updates["payment_account_name"] = req.PaymentDetails.AccountName
		updates["payment_account_number"] = req.PaymentDetails.AccountNumber
		updates["payment_bank_code"] = req.PaymentDetails.BankCode
		updates["payment_upi_id"] = req.PaymentDetails.UPIID
		updates["payment_notes"] = req.PaymentDetails.Notes
	}

	if err := d.eventRepo.UpdateByID(ctx, event.ID, updates); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update event: %v", err)
		return nil, errorx.Unknown
	}

	event, err = d.getEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	d.index(ctx, event)

	resp := model.UpdateEventResponse(model.ConvertEvent(event))
	return &resp, nil
}

func (d *eventDomain) Delete(
	ctx context.Context, req *model.DeleteEventRequest,
) (*model.DeleteEventResponse, error) {
	event, err := d.getEvent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.eventRoleVerifier.Verify(ctx, event); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.eventRepo.DeleteByID(ctx, event.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete event: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.searchIndex.DeleteEvent(event.ID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot remove event %s from index: %v", event.ID, err)
	}

	return &model.DeleteEventResponse{}, nil
}

// Get hides unlisted events from everyone but their organizers.
func (d *eventDomain) Get(ctx context.Context, req *model.GetEventRequest) (*model.GetEventResponse, error) {
	event, err := d.getEvent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !isListed(event) {
		if err := d.eventRoleVerifier.Verify(ctx, event); err != nil {
			xcontext.Logger(ctx).Debugf("Hidden event %s: %v", event.ID, err)
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}
	}

	resp := model.GetEventResponse(model.ConvertEvent(event))
	return &resp, nil
}

func (d *eventDomain) GetList(ctx context.Context, req *model.GetEventsRequest) (*model.GetEventsResponse, error) {
	limit, err := checkLimit(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	var events []entity.Event
	if q := strings.TrimSpace(req.Q); q != "" {
		ids, err := d.searchIndex.SearchEvent(q, req.Offset, limit)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot search events: %v", err)
			return nil, errorx.Unknown
		}

		found, err := d.eventRepo.GetByIDs(ctx, ids)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get events by ids: %v", err)
			return nil, errorx.Unknown
		}

		// Keep the ranking order of the index.
		byID := map[string]entity.Event{}
		for _, e := range found {
			byID[e.ID] = e
		}

		for _, id := range ids {
			if e, ok := byID[id]; ok && isListed(&e) {
				events = append(events, e)
			}
		}
	} else {
		events, err = d.eventRepo.GetList(ctx, repository.EventFilter{OnlyListed: true}, req.Offset, limit)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get event list: %v", err)
			return nil, errorx.Unknown
		}
	}

	return &model.GetEventsResponse{Events: convertEvents(events)}, nil
}

func (d *eventDomain) GetMyEvents(
	ctx context.Context, req *model.GetMyEventsRequest,
) (*model.GetMyEventsResponse, error) {
	limit, err := checkLimit(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	events, err := d.eventRepo.GetList(ctx,
		repository.EventFilter{CreatedBy: xcontext.RequestUserID(ctx)}, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get my events: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMyEventsResponse{Events: convertEvents(events)}, nil
}

func (d *eventDomain) UploadPoster(
	ctx context.Context, req *model.UploadEventPosterRequest,
) (*model.UploadEventPosterResponse, error) {
	event, err := d.getEvent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.eventRoleVerifier.Verify(ctx, event); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	image, err := common.ProcessImage(ctx, d.storage, "image", storage.PrefixPoster, false)
	if err != nil {
		return nil, err
	}

	if image == nil {
		return nil, errorx.New(errorx.BadRequest, "Missing image")
	}

	err = d.eventRepo.UpdateByID(ctx, event.ID, map[string]any{"poster_url": image.URL})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update poster: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UploadEventPosterResponse{URL: image.URL}, nil
}

// RebuildIndex loads every listed event into the search index.
func (d *eventDomain) RebuildIndex(ctx context.Context) error {
	events, err := d.eventRepo.GetList(ctx, repository.EventFilter{OnlyListed: true}, 0, 0)
	if err != nil {
		return err
	}

	for i := range events {
		if err := d.searchIndex.IndexEvent(events[i].ID, eventSearchData(&events[i])); err != nil {
			return err
		}
	}

	xcontext.Logger(ctx).Infof("Indexed %d events", len(events))
	return nil
}

func (d *eventDomain) getEvent(ctx context.Context, id string) (*entity.Event, error) {
	event, err := d.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	return event, nil
}

// index keeps only listed events searchable.
func (d *eventDomain) index(ctx context.Context, event *entity.Event) {
	var err error
	if isListed(event) {
		err = d.searchIndex.IndexEvent(event.ID, eventSearchData(event))
	} else {
		err = d.searchIndex.DeleteEvent(event.ID)
	}

	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot index event %s: %v", event.ID, err)
	}
}

func applyEventInput(event *entity.Event, input *model.EventInput) error {
	if input.Capacity != nil {
		event.Capacity = sql.NullInt64{Int64: *input.Capacity, Valid: true}
	}

	if input.Price != nil {
		event.Price = *input.Price
	}

	if input.PriceSingle != nil {
		event.PriceSingle = sql.NullInt64{Int64: *input.PriceSingle, Valid: true}
	}

	if input.PriceDuo != nil {
		event.PriceDuo = sql.NullInt64{Int64: *input.PriceDuo, Valid: true}
	}

	if input.PriceTrio != nil {
		event.PriceTrio = sql.NullInt64{Int64: *input.PriceTrio, Valid: true}
	}

	tiers, err := parseTiers(input.Tiers)
	if err != nil {
		return err
	}
	event.AllowedTiers = tiers

	if input.Status != "" {
		status, err := enum.ToEnum[entity.EventStatus](input.Status)
		if err != nil {
			return errorx.New(errorx.BadRequest, "Invalid status %s", input.Status)
		}
		event.Status = status
	}

	if input.IsPublic != nil {
		event.IsPublic = *input.IsPublic
	}

	if input.PaymentDetails != nil {
		event.PaymentDetails = entity.PaymentDetails{
			AccountName:   input.PaymentDetails.AccountName,
			AccountNumber: input.PaymentDetails.AccountNumber,
			BankCode:      input.PaymentDetails.BankCode,
			UPIID:         input.PaymentDetails.UPIID,
			Notes:         input.PaymentDetails.Notes,
		}
	}

	return nil
}

// parseTiers defaults to single tickets only.
func parseTiers(values []string) (entity.Array[entity.GroupType], error) {
	if len(values) == 0 {
		return entity.Array[entity.GroupType]{entity.GroupSingle}, nil
	}

	tiers := entity.Array[entity.GroupType]{}
	for _, v := range values {
		tier, err := enum.ToEnum[entity.GroupType](v)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid group type %s", v)
		}

		tiers = append(tiers, tier)
	}

	return tiers, nil
}

func isListed(event *entity.Event) bool {
	return event.Status == entity.EventPublished && event.IsPublic
}

func eventSearchData(event *entity.Event) search.EventData {
	return search.EventData{
		Title:       event.Title,
		Description: event.Description,
		Venue:       event.Venue,
	}
}

func convertEvents(events []entity.Event) []model.Event {
	result := []model.Event{}
	for i := range events {
		result = append(result, model.ConvertEvent(&events[i]))
	}

	return result
}
