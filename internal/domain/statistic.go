package domain

import (
	"context"
	"errors"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/campus-events/backend/pkg/xredis"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const popularEventsLimit = 5

type StatisticDomain interface {
	GetEventStatistic(context.Context, *model.GetEventStatisticRequest) (*model.GetEventStatisticResponse, error)
	GetPlatformStatistic(context.Context, *model.GetPlatformStatisticRequest) (*model.GetPlatformStatisticResponse, error)
}

type statisticDomain struct {
	userRepo           repository.UserRepository
	eventRepo          repository.EventRepository
	ticketRepo         repository.TicketRepository
	attendanceRepo     repository.AttendanceRepository
	waitlistRepo       repository.WaitlistRepository
	globalRoleVerifier *common.GlobalRoleVerifier
	eventRoleVerifier  *common.EventRoleVerifier
	redisClient        xredis.Client
}

func NewStatisticDomain(
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	attendanceRepo repository.AttendanceRepository,
	waitlistRepo repository.WaitlistRepository,
	redisClient xredis.Client,
) StatisticDomain {
	return &statisticDomain{
		userRepo:           userRepo,
		eventRepo:          eventRepo,
		ticketRepo:         ticketRepo,
		attendanceRepo:     attendanceRepo,
		waitlistRepo:       waitlistRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
		eventRoleVerifier:  common.NewEventRoleVerifier(userRepo),
		redisClient:        redisClient,
	}
}

func (d *statisticDomain) GetEventStatistic(
	ctx context.Context, req *model.GetEventStatisticRequest,
) (*model.GetEventStatisticResponse, error) {
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

	key := common.RedisKeyEventStatistic(event.ID)
	resp := &model.GetEventStatisticResponse{}
	if d.loadCache(ctx, key, resp) {
		return resp, nil
	}

	resp = &model.GetEventStatisticResponse{EventID: event.ID}

	ticketCounts, err := d.ticketRepo.CountByStatus(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count tickets: %v", err)
		return nil, errorx.Unknown
	}

	resp.TicketsByStatus, resp.TotalTickets = groupCounts(ticketCounts)

	resp.CheckedIn, err = d.ticketRepo.CountCheckedIn(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count checked in tickets: %v", err)
		return nil, errorx.Unknown
	}

	revenue, err := d.ticketRepo.SumAmountPaid(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum revenue: %v", err)
		return nil, errorx.Unknown
	}

	// Amounts are stored in minor units.
	resp.Revenue = decimal.New(revenue, -2).StringFixed(2)

	recordCounts, err := d.attendanceRepo.CountBySource(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count attendance records: %v", err)
		return nil, errorx.Unknown
	}

	resp.RecordsBySource, _ = groupCounts(recordCounts)

	resp.WaitlistSize, err = d.waitlistRepo.Count(ctx, event.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count waitlist: %v", err)
		return nil, errorx.Unknown
	}

	d.storeCache(ctx, key, resp)
	return resp, nil
}

func (d *statisticDomain) GetPlatformStatistic(
	ctx context.Context, req *model.GetPlatformStatisticRequest,
) (*model.GetPlatformStatisticResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	resp := &model.GetPlatformStatisticResponse{}
	if d.loadCache(ctx, common.RedisKeyPlatformStatistic, resp) {
		return resp, nil
	}

	resp = &model.GetPlatformStatisticResponse{PopularEvents: []model.PopularEvent{}}

	userCounts, err := d.userRepo.CountByRole(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count users: %v", err)
		return nil, errorx.Unknown
	}

	resp.UsersByRole, _ = groupCounts(userCounts)

	eventCounts, err := d.eventRepo.CountByStatus(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count events: %v", err)
		return nil, errorx.Unknown
	}

	resp.EventsByStatus, _ = groupCounts(eventCounts)

	ticketCounts, err := d.ticketRepo.CountByStatus(ctx, "")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count tickets: %v", err)
		return nil, errorx.Unknown
	}

	_, resp.TotalTickets = groupCounts(ticketCounts)

	resp.CheckedIn, err = d.ticketRepo.CountCheckedIn(ctx, "")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count checked in tickets: %v", err)
		return nil, errorx.Unknown
	}

	if d.redisClient != nil {
		popular, err := d.redisClient.ZRevRangeWithScores(ctx, common.RedisKeyPopularEvents, 0, popularEventsLimit)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get popular events: %v", err)
		}

		for _, z := range popular {
			id, ok := z.Member.(string)
			if !ok {
				continue
			}

			resp.PopularEvents = append(resp.PopularEvents, model.PopularEvent{EventID: id, Tickets: int64(z.Score)})
		}
	}

	d.storeCache(ctx, common.RedisKeyPlatformStatistic, resp)
	return resp, nil
}

// loadCache reports whether v was filled from the cache.
func (d *statisticDomain) loadCache(ctx context.Context, key string, v any) bool {
	if d.redisClient == nil {
		return false
	}

	err := d.redisClient.GetObj(ctx, key, v)
	if err == nil {
		return true
	}

	if !errors.Is(err, xredis.ErrNotFound) {
		xcontext.Logger(ctx).Warnf("Cannot load cache %s: %v", key, err)
	}

	return false
}

func (d *statisticDomain) storeCache(ctx context.Context, key string, v any) {
	if d.redisClient == nil {
		return
	}

	ttl := xcontext.Configs(ctx).Cache.StatisticTTL.Duration
	if err := d.redisClient.SetObj(ctx, key, v, ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot store cache %s: %v", key, err)
	}
}

func groupCounts(counts []repository.GroupCount) (map[string]int64, int64) {
	result := map[string]int64{}
	var total int64
	for _, c := range counts {
		result[c.Name] = c.Total
		total += c.Total
	}

	return result, total
}
