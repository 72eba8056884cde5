package domain

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/campus-events/backend/internal/common"
	"github.com/campus-events/backend/internal/domain/ticketqr"
	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/storage"
	"github.com/campus-events/backend/pkg/testutil"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/campus-events/backend/pkg/xredis"
	"github.com/stretchr/testify/require"
)

func newTestTicketDomain(fileStorage storage.Storage, redisClient xredis.Client) TicketDomain {
	return NewTicketDomain(
		repository.NewTicketRepository(),
		repository.NewEventRepository(),
		repository.NewDiscountRepository(),
		repository.NewUserRepository(),
		repository.NewWaitlistRepository(),
		ticketqr.NewSigner(testutil.QRSecret),
		fileStorage,
		redisClient,
	)
}

func issue(
	t *testing.T, ctx context.Context, d TicketDomain, userID string, req *model.IssueTicketRequest,
) *model.IssueTicketResponse {
	resp, err := d.Issue(testutil.MockContextWithUserID(ctx, userID), req)
	require.NoError(t, err)
	return resp
}

func Test_ticketDomain_Issue_FreeEvent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	popular := map[string]int64{}
	redisClient := &testutil.MockRedisClient{
		ZIncrByFunc: func(ctx context.Context, key string, incr int64, member string) error {
			require.Equal(t, common.RedisKeyPopularEvents, key)
			popular[member] += incr
			return nil
		},
	}
	d := newTestTicketDomain(&testutil.MockStorage{}, redisClient)

	resp := issue(t, ctx, d, testutil.Student1.ID, &model.IssueTicketRequest{EventID: testutil.FreeEvent.ID})
	require.Equal(t, string(entity.PaymentPaid), resp.Ticket.PaymentStatus)
	require.Equal(t, int64(0), resp.Ticket.AmountDue)
	require.Equal(t, string(entity.GroupSingle), resp.Ticket.GroupType)
	require.Nil(t, resp.PaymentDetails)
	require.Equal(t, int64(1), popular[testutil.FreeEvent.ID])

	// The QR payload is signed for this very ticket.
	payload, err := ticketqr.Parse(resp.Ticket.QRPayload)
	require.NoError(t, err)
	require.Equal(t, resp.Ticket.ID, payload.TicketID)
	require.Equal(t, testutil.Student1.ID, payload.UserID)
	require.True(t, ticketqr.NewSigner(testutil.QRSecret).Verify(payload))

	// The first participant defaults to the holder.
	require.Equal(t, []model.Participant{{Name: testutil.Student1.Name, RollNumber: "CS001"}}, resp.Ticket.Participants)

	_, err = d.Issue(
		testutil.MockContextWithUserID(ctx, testutil.Student1.ID),
		&model.IssueTicketRequest{EventID: testutil.FreeEvent.ID},
	)
	require.True(t, errorx.Is(err, errorx.AlreadyExists))

	_, err = d.Issue(
		testutil.MockContextWithUserID(ctx, testutil.Student2.ID),
		&model.IssueTicketRequest{EventID: testutil.FreeEvent.ID},
	)
	require.True(t, errorx.Is(err, errorx.EventFull))

	event, err := repository.NewEventRepository().GetByID(ctx, testutil.FreeEvent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), event.IssuedCount)
}

func Test_ticketDomain_Issue_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestTicketDomain(&testutil.MockStorage{}, nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)

	for _, u := range testutil.Users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := d.Issue(
				testutil.MockContextWithUserID(ctx, userID),
				&model.IssueTicketRequest{EventID: testutil.FreeEvent.ID},
			)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errorx.Is(err, errorx.EventFull) {
				full++
			}
		}(u.ID)
	}
	wg.Wait()

	require.Equal(t, 1, succeeded)
	require.Equal(t, len(testutil.Users)-1, full)

	event, err := repository.NewEventRepository().GetByID(ctx, testutil.FreeEvent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), event.IssuedCount)
}

func Test_ticketDomain_Issue_PaidEvent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestTicketDomain(&testutil.MockStorage{}, nil)

	resp := issue(t, ctx, d, testutil.Student1.ID, &model.IssueTicketRequest{
		EventID:       testutil.PaidEvent.ID,
		DiscountCode:  "save10",
		PaymentMethod: "upi",
	})
	require.Equal(t, string(entity.PaymentUnpaid), resp.Ticket.PaymentStatus)
	require.Equal(t, int64(8100), resp.Ticket.AmountDue)
	require.Equal(t, "SAVE10", resp.Ticket.DiscountCode)
	require.Empty(t, resp.Ticket.QRPayload)
	require.NotNil(t, resp.PaymentDetails)
	require.Equal(t, testutil.PaidEvent.PaymentDetails.UPIID, resp.PaymentDetails.UPIID)

	discount, err := repository.NewDiscountRepository().GetByID(ctx, testutil.Save10Discount.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), discount.UsedCount)

	// A full discount makes the ticket paid right away.
	resp = issue(t, ctx, d, testutil.Student2.ID, &model.IssueTicketRequest{
		EventID:      testutil.PaidEvent.ID,
		GroupType:    "trio",
		DiscountCode: "FREE100",
		Participants: []model.Participant{{Name: "A"}, {Name: "B"}, {Name: "C"}},
	})
	require.Equal(t, string(entity.PaymentPaid), resp.Ticket.PaymentStatus)
	require.Equal(t, int64(0), resp.Ticket.AmountDue)
	require.Len(t, resp.Ticket.Participants, 3)
	require.NotEmpty(t, resp.Ticket.QRPayload)

	// A code that does not lower the price is not consumed.
	resp = issue(t, ctx, d, testutil.Committee2.ID, &model.IssueTicketRequest{
		EventID:      testutil.PaidEvent.ID,
		GroupType:    "duo",
		DiscountCode: "ZERO",
	})
	require.Equal(t, int64(15000), resp.Ticket.AmountDue)
	require.Empty(t, resp.Ticket.DiscountCode)

	discount, err = repository.NewDiscountRepository().GetByID(ctx, testutil.ZeroDiscount.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), discount.UsedCount)
}

func Test_ticketDomain_Issue_ExhaustedDiscount(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestTicketDomain(&testutil.MockStorage{}, nil)

	resp := issue(t, ctx, d, testutil.Student1.ID, &model.IssueTicketRequest{
		EventID:      testutil.PaidEvent.ID,
		DiscountCode: "ONCE",
	})
	require.Equal(t, int64(8000), resp.Ticket.AmountDue)
	require.Equal(t, "ONCE", resp.Ticket.DiscountCode)

	// The only use is gone, the ticket is issued at full price.
	resp = issue(t, ctx, d, testutil.Student2.ID, &model.IssueTicketRequest{
		EventID:      testutil.PaidEvent.ID,
		DiscountCode: "ONCE",
	})
	require.Equal(t, int64(9000), resp.Ticket.AmountDue)
	require.Empty(t, resp.Ticket.DiscountCode)

	preview, err := newTestDiscountDomain().PreviewPrice(ctx, &model.PreviewPriceRequest{
		EventID: testutil.PaidEvent.ID,
		Code:    "ONCE",
	})
	require.NoError(t, err)
	require.False(t, preview.Applied)
}

func Test_ticketDomain_Issue_Errors(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestTicketDomain(&testutil.MockStorage{}, nil)

	tests := []struct {
		name    string
		userID  string
		req     *model.IssueTicketRequest
		wantErr errorx.Code
	}{
		{
			name:    "tier not allowed",
			userID:  testutil.Student1.ID,
			req:     &model.IssueTicketRequest{EventID: testutil.FreeEvent.ID, GroupType: "duo"},
			wantErr: errorx.TierNotAllowed,
		},
		{
			name:    "invalid group type",
			userID:  testutil.Student1.ID,
			req:     &model.IssueTicketRequest{EventID: testutil.FreeEvent.ID, GroupType: "squad"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "draft event",
			userID:  testutil.Student1.ID,
			req:     &model.IssueTicketRequest{EventID: testutil.DraftEvent.ID},
			wantErr: errorx.EventNotOpen,
		},
		{
			name:    "unknown event",
			userID:  testutil.Student1.ID,
			req:     &model.IssueTicketRequest{EventID: "missing"},
			wantErr: errorx.NotFound,
		},
		{
			name:    "unknown user",
			userID:  "ghost",
			req:     &model.IssueTicketRequest{EventID: testutil.FreeEvent.ID},
			wantErr: errorx.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Issue(testutil.MockContextWithUserID(ctx, tt.userID), tt.req)
			require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
		})
	}

	// Nothing was reserved by the failed attempts.
	event, err := repository.NewEventRepository().GetByID(ctx, testutil.FreeEvent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), event.IssuedCount)
}

func Test_ticketDomain_PaymentReview(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	fileStorage := &testutil.MockStorage{
		BulkUploadFunc: func(
			ctx context.Context, objs []*storage.UploadObject,
		) ([]*storage.UploadResponse, error) {
			resp := []*storage.UploadResponse{}
			for _, o := range objs {
				resp = append(resp, &storage.UploadResponse{Url: "https://cdn.test/" + o.Prefix + "/" + o.FileName})
			}
			return resp, nil
		},
	}
	d := newTestTicketDomain(fileStorage, nil)

	holderCtx := testutil.MockContextWithUserID(ctx, testutil.Student1.ID)
	organizerCtx := testutil.MockContextWithUserID(ctx, testutil.Committee1.ID)

	issued := issue(t, ctx, d, testutil.Student1.ID, &model.IssueTicketRequest{EventID: testutil.PaidEvent.ID})
	ticketID := issued.Ticket.ID

	// Only the holder submits proofs.
	_, err := d.SubmitPaymentProof(
		testutil.MockContextWithUserID(ctx, testutil.Student2.ID),
		&model.SubmitPaymentProofRequest{TicketID: ticketID, TransactionRef: "UTR1"},
	)
	require.True(t, errorx.Is(err, errorx.NotOwner))

	req := newMultipartRequest(t, "image", "proof.png", pngBytes(t, 64))
	proof, err := d.SubmitPaymentProof(
		xcontext.WithHTTPRequest(holderCtx, req),
		&model.SubmitPaymentProofRequest{TicketID: ticketID, TransactionRef: "UTR1"},
	)
	require.NoError(t, err)
	require.Equal(t, string(entity.PaymentPendingProof), proof.PaymentStatus)
	require.Equal(t, "UTR1", proof.TransactionRef)
	require.Equal(t, "https://cdn.test/proofs/proof.png", proof.ProofURL)
	require.Equal(t, "https://cdn.test/proofs/preview-proof.png", proof.ProofPreviewURL)
	require.NotEmpty(t, proof.ProofSubmittedAt)

	// Other organizers cannot review.
	_, err = d.ReviewPayment(
		testutil.MockContextWithUserID(ctx, testutil.Committee2.ID),
		&model.ReviewPaymentRequest{TicketID: ticketID, Action: "approve"},
	)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	rejected, err := d.ReviewPayment(organizerCtx, &model.ReviewPaymentRequest{
		TicketID: ticketID,
		Action:   "reject",
		Reason:   "amount does not match",
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.PaymentRejected), rejected.PaymentStatus)
	require.Equal(t, "amount does not match", rejected.RejectionReason)
	require.Equal(t, testutil.Committee1.ID, rejected.ReviewerID)

	// A rejected holder cannot take a second ticket.
	_, err = d.Issue(holderCtx, &model.IssueTicketRequest{EventID: testutil.PaidEvent.ID})
	require.True(t, errorx.Is(err, errorx.AlreadyExists))

	// A rejected ticket accepts a new proof.
	proof, err = d.SubmitPaymentProof(holderCtx, &model.SubmitPaymentProofRequest{
		TicketID:       ticketID,
		TransactionRef: "UTR2",
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.PaymentPendingProof), proof.PaymentStatus)
	require.Empty(t, proof.RejectionReason)

	approved, err := d.ReviewPayment(organizerCtx, &model.ReviewPaymentRequest{TicketID: ticketID, Action: "approve"})
	require.NoError(t, err)
	require.Equal(t, string(entity.PaymentPaid), approved.PaymentStatus)
	require.Equal(t, int64(9000), approved.AmountPaid)

	payload, err := ticketqr.Parse(approved.QRPayload)
	require.NoError(t, err)
	require.True(t, ticketqr.NewSigner(testutil.QRSecret).Verify(payload))

	var held int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("user_id=? AND event_id=?", testutil.Student1.ID, testutil.PaidEvent.ID).
		Count(&held).Error)
	require.Equal(t, int64(1), held)

	// Approving twice changes nothing.
	again, err := d.ReviewPayment(
		testutil.MockContextWithUserID(ctx, testutil.Admin1.ID),
		&model.ReviewPaymentRequest{TicketID: ticketID, Action: "approve"},
	)
	require.NoError(t, err)
	require.Equal(t, approved.QRPayload, again.QRPayload)
	require.Equal(t, approved.ReviewedAt, again.ReviewedAt)
	require.Equal(t, testutil.Committee1.ID, again.ReviewerID)

	_, err = d.ReviewPayment(organizerCtx, &model.ReviewPaymentRequest{TicketID: ticketID, Action: "reject"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.SubmitPaymentProof(holderCtx, &model.SubmitPaymentProofRequest{
		TicketID:       ticketID,
		TransactionRef: "UTR3",
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_ticketDomain_Get(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestTicketDomain(&testutil.MockStorage{}, nil)

	free := issue(t, ctx, d, testutil.Student1.ID, &model.IssueTicketRequest{EventID: testutil.FreeEvent.ID})
	paid := issue(t, ctx, d, testutil.Student1.ID, &model.IssueTicketRequest{EventID: testutil.PaidEvent.ID})

	holderCtx := testutil.MockContextWithUserID(ctx, testutil.Student1.ID)

	resp, err := d.Get(holderCtx, &model.GetTicketRequest{ID: free.Ticket.ID})
	require.NoError(t, err)
	png, err := base64.StdEncoding.DecodeString(resp.QRImage)
	require.NoError(t, err)
	require.Equal(t, []byte("\x89PNG"), png[:4])

	// No QR image before payment.
	resp, err = d.Get(holderCtx, &model.GetTicketRequest{ID: paid.Ticket.ID})
	require.NoError(t, err)
	require.Empty(t, resp.QRImage)

	// The organizer may look, other students may not.
	_, err = d.Get(
		testutil.MockContextWithUserID(ctx, testutil.Committee1.ID),
		&model.GetTicketRequest{ID: free.Ticket.ID},
	)
	require.NoError(t, err)

	_, err = d.Get(
		testutil.MockContextWithUserID(ctx, testutil.Student2.ID),
		&model.GetTicketRequest{ID: free.Ticket.ID},
	)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	mine, err := d.GetMyTickets(holderCtx, &model.GetMyTicketsRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Tickets, 2)

	// Organizer listings never carry the QR payload.
	list, err := d.GetEventTickets(
		testutil.MockContextWithUserID(ctx, testutil.Committee1.ID),
		&model.GetEventTicketsRequest{EventID: testutil.FreeEvent.ID, Status: "paid"},
	)
	require.NoError(t, err)
	require.Len(t, list.Tickets, 1)
	require.Empty(t, list.Tickets[0].QRPayload)

	list, err = d.GetEventTickets(
		testutil.MockContextWithUserID(ctx, testutil.Committee1.ID),
		&model.GetEventTicketsRequest{EventID: testutil.PaidEvent.ID, Status: "paid"},
	)
	require.NoError(t, err)
	require.Empty(t, list.Tickets)

	_, err = d.GetEventTickets(holderCtx, &model.GetEventTicketsRequest{EventID: testutil.FreeEvent.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))
}
