package domain

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/domain/ticketqr"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/enum"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/storage"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/campus-events/backend/pkg/xredis"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketDomain interface {
	Issue(context.Context, *model.IssueTicketRequest) (*model.IssueTicketResponse, error)
	SubmitPaymentProof(context.Context, *model.SubmitPaymentProofRequest) (*model.SubmitPaymentProofResponse, error)
	ReviewPayment(context.Context, *model.ReviewPaymentRequest) (*model.ReviewPaymentResponse, error)
	GetMyTickets(context.Context, *model.GetMyTicketsRequest) (*model.GetMyTicketsResponse, error)
	Get(context.Context, *model.GetTicketRequest) (*model.GetTicketResponse, error)
	GetEventTickets(context.Context, *model.GetEventTicketsRequest) (*model.GetEventTicketsResponse, error)
}

type ticketDomain struct {
	ticketRepo        repository.TicketRepository
	eventRepo         repository.EventRepository
	discountRepo      repository.DiscountRepository
	userRepo          repository.UserRepository
	waitlistRepo      repository.WaitlistRepository
	eventRoleVerifier *common.EventRoleVerifier
	signer            *ticketqr.Signer
	storage           storage.Storage
	redisClient       xredis.Client
}

func NewTicketDomain(
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	discountRepo repository.DiscountRepository,
	userRepo repository.UserRepository,
	waitlistRepo repository.WaitlistRepository,
	signer *ticketqr.Signer,
	storage storage.Storage,
	redisClient xredis.Client,
) TicketDomain {
	return &ticketDomain{
		ticketRepo:        ticketRepo,
		eventRepo:         eventRepo,
		discountRepo:      discountRepo,
		userRepo:          userRepo,
		waitlistRepo:      waitlistRepo,
		eventRoleVerifier: common.NewEventRoleVerifier(userRepo),
		signer:            signer,
		storage:           storage,
		redisClient:       redisClient,
	}
}

func (d *ticketDomain) Issue(
	ctx context.Context, req *model.IssueTicketRequest,
) (*model.IssueTicketResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unauthenticated, "User is not valid")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	groupType := entity.GroupSingle
	if req.GroupType != "" {
		groupType, err = enum.ToEnum[entity.GroupType](req.GroupType)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid group type %s", req.GroupType)
		}
	}

	event, err := d.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	if event.Status != entity.EventPublished {
		return nil, errorx.New(errorx.EventNotOpen, "Event is not open for registration")
	}

	if !event.AllowsTier(groupType) {
		return nil, errorx.New(errorx.TierNotAllowed, "Group type %s is not allowed for this event", groupType)
	}

	basePrice := resolveBasePrice(ctx, event, groupType)
	ticket := &entity.Ticket{
		Base:          entity.Base{ID: uuid.NewString()},
		UserID:        user.ID,
		EventID:       event.ID,
		GroupType:     groupType,
		Participants:  normalizeParticipants(user, groupType, req.Participants),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		AmountDue:     basePrice,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	existing, err := d.ticketRepo.GetByUserAndEvent(ctx, user.ID, event.ID)
	if err == nil {
		if existing.PaymentStatus == entity.PaymentRejected {
			return nil, errorx.New(errorx.AlreadyExists,
				"Payment of ticket %s was rejected, submit a new proof instead", existing.ID)
		}

		return nil, errorx.New(errorx.AlreadyExists, "User already holds a ticket for this event")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get ticket of user: %v", err)
		return nil, errorx.Unknown
	}

	reserved, err := d.eventRepo.IncreaseIssued(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reserve a seat: %v", err)
		return nil, errorx.Unknown
	}

	if !reserved {
		return nil, errorx.New(errorx.EventFull, "Event is full")
	}

	discount, err := findDiscount(ctx, d.discountRepo, event.ID, req.DiscountCode)
	if err != nil {
		return nil, err
	}

	if discount != nil {
		if discounted := applyDiscount(basePrice, discount); discounted < basePrice {
			consumed, err := d.discountRepo.IncreaseUsage(ctx, discount.ID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot consume discount: %v", err)
				return nil, errorx.Unknown
			}

			if consumed {
				ticket.AmountDue = discounted
				ticket.DiscountCode = discount.Code
			}
		}
	}

	if ticket.AmountDue == 0 {
		payload, err := d.signer.Encode(ticket.ID, ticket.EventID, ticket.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot sign ticket: %v", err)
			return nil, errorx.Unknown
		}

		ticket.PaymentStatus = entity.PaymentPaid
		ticket.QRPayload = payload
	} else {
		ticket.PaymentStatus = entity.PaymentUnpaid
	}

	if err := d.ticketRepo.Create(ctx, ticket); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errorx.New(errorx.AlreadyExists, "User already holds a ticket for this event")
		}

		xcontext.Logger(ctx).Errorf("Cannot create ticket: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.waitlistRepo.Delete(ctx, event.ID, user.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot remove user from waitlist: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	common.PromCounters[common.TicketIssuedTotal].
		WithLabelValues(string(groupType), string(ticket.PaymentStatus)).Inc()
	invalidateStatistic(ctx, d.redisClient, event.ID)
	if d.redisClient != nil {
		if err := d.redisClient.ZIncrBy(ctx, common.RedisKeyPopularEvents, 1, event.ID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update popular events: %v", err)
		}
	}

	event.IssuedCount++
	ticket.User = *user
	ticket.Event = *event

	resp := &model.IssueTicketResponse{Ticket: model.ConvertTicket(ticket, true)}
	if ticket.PaymentStatus == entity.PaymentUnpaid {
		details := model.ConvertPaymentDetails(event.PaymentDetails)
		resp.PaymentDetails = &details
	}

	return resp, nil
}

func (d *ticketDomain) SubmitPaymentProof(
	ctx context.Context, req *model.SubmitPaymentProofRequest,
) (*model.SubmitPaymentProofResponse, error) {
	ticket, err := d.getTicket(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}

	if ticket.UserID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.NotOwner, "Ticket does not belong to user")
	}

	if ticket.PaymentStatus == entity.PaymentPaid {
		return nil, errorx.New(errorx.BadRequest, "Ticket is already paid")
	}

	image, err := common.ProcessImage(ctx, d.storage, "image", storage.PrefixPaymentProof, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	proof := &entity.Ticket{
		TransactionRef:   strings.TrimSpace(req.TransactionRef),
		ProofSubmittedAt: &now,
	}

	if image != nil {
		proof.ProofURL = image.URL
		proof.ProofPreviewURL = image.PreviewURL
	}

	updated, err := d.ticketRepo.UpdateProof(ctx, ticket.ID, proof)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update payment proof: %v", err)
		return nil, errorx.Unknown
	}

	if !updated {
		return nil, errorx.New(errorx.BadRequest, "Ticket is already paid")
	}

	invalidateStatistic(ctx, d.redisClient, ticket.EventID)

	ticket, err = d.getTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	resp := model.SubmitPaymentProofResponse(model.ConvertTicket(ticket, true))
	return &resp, nil
}

// ReviewPayment approves or rejects the payment of a ticket. Approving a paid
// ticket changes nothing.
func (d *ticketDomain) ReviewPayment(
	ctx context.Context, req *model.ReviewPaymentRequest,
) (*model.ReviewPaymentResponse, error) {
	ticket, err := d.getTicket(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}

	if err := d.eventRoleVerifier.Verify(ctx, &ticket.Event); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	reviewerID := xcontext.RequestUserID(ctx)
	now := time.Now()

	switch req.Action {
	case "approve":
		if ticket.PaymentStatus == entity.PaymentPaid {
			break
		}

		payload, err := d.signer.Encode(ticket.ID, ticket.EventID, ticket.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot sign ticket: %v", err)
			return nil, errorx.Unknown
		}

		if _, err := d.ticketRepo.Approve(ctx, ticket.ID, reviewerID, now, payload); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot approve payment: %v", err)
			return nil, errorx.Unknown
		}

	case "reject":
		if ticket.PaymentStatus == entity.PaymentPaid {
			return nil, errorx.New(errorx.BadRequest, "Cannot reject a paid ticket")
		}

		rejected, err := d.ticketRepo.Reject(ctx, ticket.ID, reviewerID, now, strings.TrimSpace(req.Reason))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reject payment: %v", err)
			return nil, errorx.Unknown
		}

		if !rejected {
			return nil, errorx.New(errorx.BadRequest, "Cannot reject a paid ticket")
		}

	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid action %s", req.Action)
	}

	common.PromCounters[common.PaymentReviewTotal].WithLabelValues(req.Action).Inc()
	invalidateStatistic(ctx, d.redisClient, ticket.EventID)

	ticket, err = d.getTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	resp := model.ReviewPaymentResponse(model.ConvertTicket(ticket, true))
	return &resp, nil
}

func (d *ticketDomain) GetMyTickets(
	ctx context.Context, req *model.GetMyTicketsRequest,
) (*model.GetMyTicketsResponse, error) {
	limit, err := checkLimit(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	tickets, err := d.ticketRepo.GetList(ctx,
		repository.TicketFilter{UserID: xcontext.RequestUserID(ctx)}, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tickets: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMyTicketsResponse{Tickets: convertTickets(tickets, true)}, nil
}

// Get returns the ticket to its holder and to the organizers of its event,
// with a rendered QR image once paid.
func (d *ticketDomain) Get(ctx context.Context, req *model.GetTicketRequest) (*model.GetTicketResponse, error) {
	ticket, err := d.getTicket(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if ticket.UserID != xcontext.RequestUserID(ctx) {
		if err := d.eventRoleVerifier.Verify(ctx, &ticket.Event); err != nil {
			xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}
	}

	resp := &model.GetTicketResponse{Ticket: model.ConvertTicket(ticket, true)}
	if ticket.PaymentStatus == entity.PaymentPaid && ticket.QRPayload != "" {
		png, err := ticketqr.PNG(ticket.QRPayload, xcontext.Configs(ctx).Ticket.QRSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot render qr code: %v", err)
			return nil, errorx.Unknown
		}

		resp.QRImage = base64.StdEncoding.EncodeToString(png)
	}

	return resp, nil
}

func (d *ticketDomain) GetEventTickets(
	ctx context.Context, req *model.GetEventTicketsRequest,
) (*model.GetEventTicketsResponse, error) {
	event, err := d.eventRepo.GetByID(ctx, req.EventID)
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

	filter := repository.TicketFilter{EventID: event.ID}
	if req.Status != "" {
		filter.Status, err = enum.ToEnum[entity.PaymentStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}
	}

	limit, err := checkLimit(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	tickets, err := d.ticketRepo.GetList(ctx, filter, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tickets of event: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetEventTicketsResponse{Tickets: convertTickets(tickets, false)}, nil
}

func (d *ticketDomain) getTicket(ctx context.Context, id string) (*entity.Ticket, error) {
	ticket, err := d.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found ticket")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ticket: %v", err)
		return nil, errorx.Unknown
	}

	return ticket, nil
}

// normalizeParticipants pads or truncates participants to the size of the
// group. Blank fields of the first participant are taken from the user.
func normalizeParticipants(
	user *entity.User, groupType entity.GroupType, participants []model.Participant,
) entity.Array[entity.Participant] {
	result := make(entity.Array[entity.Participant], groupType.Size())
	for i := range result {
		if i < len(participants) {
			result[i] = entity.Participant{
				Name:       strings.TrimSpace(participants[i].Name),
				RollNumber: strings.TrimSpace(participants[i].RollNumber),
			}
		}
	}

	if result[0].Name == "" {
		result[0].Name = user.Name
	}

	if result[0].RollNumber == "" {
		result[0].RollNumber = user.RollNumber
	}

	return result
}

func convertTickets(tickets []entity.Ticket, includeQR bool) []model.Ticket {
	result := []model.Ticket{}
	for i := range tickets {
		result = append(result, model.ConvertTicket(&tickets[i], includeQR))
	}

	return result
}
