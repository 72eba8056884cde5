package domain

import (
	"context"
	"errors"
	"time"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/domain/ticketqr"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/campus-events/backend/pkg/xredis"
	"gorm.io/gorm"
)

type AttendanceDomain interface {
	ScanCheckIn(context.Context, *model.ScanCheckInRequest) (*model.ScanCheckInResponse, error)
	ManualCheckIn(context.Context, *model.ManualCheckInRequest) (*model.ManualCheckInResponse, error)
	GetAttendance(context.Context, *model.GetAttendanceRequest) (*model.GetAttendanceResponse, error)
}

type attendanceDomain struct {
	attendanceRepo     repository.AttendanceRepository
	ticketRepo         repository.TicketRepository
	eventRepo          repository.EventRepository
	userRepo           repository.UserRepository
	globalRoleVerifier *common.GlobalRoleVerifier
	eventRoleVerifier  *common.EventRoleVerifier
	signer             *ticketqr.Signer
	redisClient        xredis.Client
}

func NewAttendanceDomain(
	attendanceRepo repository.AttendanceRepository,
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	signer *ticketqr.Signer,
	redisClient xredis.Client,
) AttendanceDomain {
	return &attendanceDomain{
		attendanceRepo:     attendanceRepo,
		ticketRepo:         ticketRepo,
		eventRepo:          eventRepo,
		userRepo:           userRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
		eventRoleVerifier:  common.NewEventRoleVerifier(userRepo),
		signer:             signer,
		redisClient:        redisClient,
	}
}

// ScanCheckIn admits the holder of a scanned ticket. A ticket is checked in
// at most once; later scans succeed with Already set and record nothing.
func (d *attendanceDomain) ScanCheckIn(
	ctx context.Context, req *model.ScanCheckInRequest,
) (*model.ScanCheckInResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.OrganizerRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only committee members can scan tickets")
	}

	payload, err := ticketqr.Parse(req.Payload)
	if err != nil {
		d.countScan("invalid_code")
		return nil, errorx.New(errorx.InvalidCode, "Invalid QR code")
	}

	if !d.signer.Verify(payload) {
		xcontext.Logger(ctx).Warnf("Bad QR signature for ticket %s from scanner %s",
			payload.TicketID, xcontext.RequestUserID(ctx))
		d.countScan("bad_signature")
		return nil, errorx.New(errorx.InvalidSignature, "Invalid QR signature")
	}

	ticket, err := d.ticketRepo.GetByID(ctx, payload.TicketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found ticket")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ticket: %v", err)
		return nil, errorx.Unknown
	}

	if ticket.UserID != payload.UserID || ticket.EventID != payload.EventID {
		d.countScan("mismatch")
		return nil, errorx.New(errorx.Mismatch, "QR code does not match the ticket")
	}

	if err := d.eventRoleVerifier.Verify(ctx, &ticket.Event); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if ticket.PaymentStatus != entity.PaymentPaid {
		d.countScan("not_paid")
		return nil, errorx.New(errorx.NotPaid, "Ticket is not paid")
	}

	if ticket.CheckedIn {
		d.countScan("already")
		return scanResponse(ticket, true), nil
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	now := time.Now()
	checkedIn, err := d.ticketRepo.MarkCheckedIn(ctx, ticket.ID, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check in ticket: %v", err)
		return nil, errorx.Unknown
	}

	if !checkedIn {
		// Another scanner won the race, report its check-in time.
		ticket, err = d.ticketRepo.GetByID(ctx, ticket.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reload ticket: %v", err)
			return nil, errorx.Unknown
		}

		d.countScan("already")
		return scanResponse(ticket, true), nil
	}

	err = d.attendanceRepo.Create(ctx, &entity.Attendance{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		EventID:       ticket.EventID,
		UserID:        ticket.UserID,
		TicketID:      ticket.ID,
		Present:       true,
		Source:        entity.AttendanceQR,
		ActorID:       xcontext.RequestUserID(ctx),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create attendance record: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	d.countScan("checked_in")
	invalidateStatistic(ctx, d.redisClient, ticket.EventID)

	ticket.CheckedIn = true
	ticket.CheckedInAt = &now
	return scanResponse(ticket, false), nil
}

// ManualCheckIn appends a manual record. It never changes the ticket; the
// response reports the ticket state next to the new record.
func (d *attendanceDomain) ManualCheckIn(
	ctx context.Context, req *model.ManualCheckInRequest,
) (*model.ManualCheckInResponse, error) {
	event, err := d.getManagedEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	record := &entity.Attendance{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		EventID:       event.ID,
		UserID:        req.UserID,
		Present:       req.Present,
		Source:        entity.AttendanceManual,
		ActorID:       xcontext.RequestUserID(ctx),
	}

	ticket, err := d.ticketRepo.GetActiveByUserAndEvent(ctx, req.UserID, event.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get ticket of user: %v", err)
		return nil, errorx.Unknown
	}

	if ticket != nil {
		record.TicketID = ticket.ID
	}

	if err := d.attendanceRepo.Create(ctx, record); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create attendance record: %v", err)
		return nil, errorx.Unknown
	}

	common.PromCounters[common.CheckInTotal].WithLabelValues(string(entity.AttendanceManual), "recorded").Inc()
	invalidateStatistic(ctx, d.redisClient, event.ID)

	resp := &model.ManualCheckInResponse{Record: model.ConvertAttendance(record)}
	if ticket != nil {
		resp.TicketID = ticket.ID
		resp.TicketCheckedIn = ticket.CheckedIn
	}

	return resp, nil
}

func (d *attendanceDomain) GetAttendance(
	ctx context.Context, req *model.GetAttendanceRequest,
) (*model.GetAttendanceResponse, error) {
	event, err := d.getManagedEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	records, err := d.attendanceRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get attendance records: %v", err)
		return nil, errorx.Unknown
	}

	tickets, err := d.ticketRepo.GetList(ctx,
		repository.TicketFilter{EventID: event.ID, Status: entity.PaymentPaid}, 0, 0)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tickets of event: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetAttendanceResponse{
		Records: []model.Attendance{},
		Tickets: []model.TicketAttendance{},
	}

	for i := range records {
		resp.Records = append(resp.Records, model.ConvertAttendance(&records[i]))
	}

	for _, t := range tickets {
		ta := model.TicketAttendance{
			TicketID:  t.ID,
			User:      model.ConvertUser(&t.User, true),
			CheckedIn: t.CheckedIn,
		}

		if t.CheckedInAt != nil {
			ta.CheckedInAt = t.CheckedInAt.Format(model.DefaultTimeLayout)
		}

		resp.Tickets = append(resp.Tickets, ta)
	}

	return resp, nil
}

func (d *attendanceDomain) getManagedEvent(ctx context.Context, eventID string) (*entity.Event, error) {
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

func (d *attendanceDomain) countScan(result string) {
	common.PromCounters[common.CheckInTotal].WithLabelValues(string(entity.AttendanceQR), result).Inc()
}

func scanResponse(ticket *entity.Ticket, already bool) *model.ScanCheckInResponse {
	resp := &model.ScanCheckInResponse{
		Already:      already,
		TicketID:     ticket.ID,
		Name:         ticket.User.Name,
		Email:        ticket.User.Email,
		Phone:        ticket.User.Phone,
		RollNumber:   ticket.User.RollNumber,
		EventTitle:   ticket.Event.Title,
		GroupType:    string(ticket.GroupType),
		Participants: model.ConvertParticipants(ticket.Participants),
	}

	if ticket.CheckedInAt != nil {
		resp.CheckedInAt = ticket.CheckedInAt.Format(model.DefaultTimeLayout)
	}

	return resp
}
