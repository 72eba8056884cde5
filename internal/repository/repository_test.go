package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_eventRepository_IncreaseIssued(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	eventRepo := repository.NewEventRepository()

	// FreeEvent has a single seat.
	ok, err := eventRepo.IncreaseIssued(ctx, testutil.FreeEvent.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = eventRepo.IncreaseIssued(ctx, testutil.FreeEvent.ID)
	require.NoError(t, err)
	require.False(t, ok)

	event, err := eventRepo.GetByID(ctx, testutil.FreeEvent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), event.IssuedCount)

	ok, err = eventRepo.IncreaseIssued(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_eventRepository_GetList(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	eventRepo := repository.NewEventRepository()

	listed, err := eventRepo.GetList(ctx, repository.EventFilter{OnlyListed: true}, 0, 0)
	require.NoError(t, err)
	for _, e := range listed {
		require.Equal(t, entity.EventPublished, e.Status)
		require.True(t, e.IsPublic)
	}

	mine, err := eventRepo.GetList(ctx, repository.EventFilter{CreatedBy: testutil.Committee2.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, testutil.DraftEvent.ID, mine[0].ID)
}

func Test_discountRepository_IncreaseUsage(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	discountRepo := repository.NewDiscountRepository()

	ok, err := discountRepo.IncreaseUsage(ctx, testutil.OnceDiscount.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = discountRepo.IncreaseUsage(ctx, testutil.OnceDiscount.ID)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = discountRepo.IncreaseUsage(ctx, testutil.InactiveDiscount.ID)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = discountRepo.IncreaseUsage(ctx, testutil.Save10Discount.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func Test_ticketRepository_MarkCheckedIn(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	ticketRepo := repository.NewTicketRepository()

	paid := &entity.Ticket{
		Base:          entity.Base{ID: "paid_ticket"},
		UserID:        testutil.Student1.ID,
		EventID:       testutil.PaidEvent.ID,
		GroupType:     entity.GroupSingle,
		PaymentStatus: entity.PaymentPaid,
		AmountDue:     9000,
		AmountPaid:    9000,
	}
	unpaid := &entity.Ticket{
		Base:          entity.Base{ID: "unpaid_ticket"},
		UserID:        testutil.Student2.ID,
		EventID:       testutil.PaidEvent.ID,
		GroupType:     entity.GroupSingle,
		PaymentStatus: entity.PaymentUnpaid,
		AmountDue:     9000,
	}
	require.NoError(t, ticketRepo.Create(ctx, paid))
	require.NoError(t, ticketRepo.Create(ctx, unpaid))

	now := time.Now()
	ok, err := ticketRepo.MarkCheckedIn(ctx, paid.ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ticketRepo.MarkCheckedIn(ctx, paid.ID, now)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = ticketRepo.MarkCheckedIn(ctx, unpaid.ID, now)
	require.NoError(t, err)
	require.False(t, ok)

	checkedIn, err := ticketRepo.CountCheckedIn(ctx, testutil.PaidEvent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), checkedIn)

	revenue, err := ticketRepo.SumAmountPaid(ctx, testutil.PaidEvent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(9000), revenue)
}

func Test_ticketRepository_CreateDuplicate(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	ticketRepo := repository.NewTicketRepository()

	first := &entity.Ticket{
		Base:          entity.Base{ID: "first_ticket"},
		UserID:        testutil.Student1.ID,
		EventID:       testutil.PaidEvent.ID,
		GroupType:     entity.GroupSingle,
		PaymentStatus: entity.PaymentRejected,
		AmountDue:     9000,
	}
	require.NoError(t, ticketRepo.Create(ctx, first))

	second := &entity.Ticket{
		Base:          entity.Base{ID: "second_ticket"},
		UserID:        testutil.Student1.ID,
		EventID:       testutil.PaidEvent.ID,
		GroupType:     entity.GroupSingle,
		PaymentStatus: entity.PaymentUnpaid,
		AmountDue:     9000,
	}
	err := ticketRepo.Create(ctx, second)
	require.Error(t, err)
	require.True(t, repository.IsDuplicateKey(err))
	require.False(t, repository.IsDuplicateKey(errors.New("other")))

	got, err := ticketRepo.GetByUserAndEvent(ctx, testutil.Student1.ID, testutil.PaidEvent.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	_, err = ticketRepo.GetActiveByUserAndEvent(ctx, testutil.Student1.ID, testutil.PaidEvent.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
