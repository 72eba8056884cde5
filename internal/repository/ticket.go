package repository

import (
	"context"
	"time"

	"github.com/campus-events/backend/internal/entity"
	"github.com/campus-events/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type TicketFilter struct {
	UserID  string
	EventID string
	Status  entity.PaymentStatus
}

type TicketRepository interface {
	Create(ctx context.Context, data *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	GetList(ctx context.Context, filter TicketFilter, offset, limit int) ([]entity.Ticket, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*entity.Ticket, error)
	GetActiveByUserAndEvent(ctx context.Context, userID, eventID string) (*entity.Ticket, error)
	UpdateProof(ctx context.Context, id string, data *entity.Ticket) (bool, error)
	Approve(ctx context.Context, id, reviewerID string, at time.Time, qrPayload string) (bool, error)
	Reject(ctx context.Context, id, reviewerID string, at time.Time, reason string) (bool, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, eventID string) ([]GroupCount, error)
	CountCheckedIn(ctx context.Context, eventID string) (int64, error)
	SumAmountPaid(ctx context.Context, eventID string) (int64, error)
}

type ticketRepository struct{}

func NewTicketRepository() TicketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) Create(ctx context.Context, data *entity.Ticket) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	result := entity.Ticket{}
	err := xcontext.DB(ctx).
		Preload("User").
		Preload("Event").
		Take(&result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) GetList(
	ctx context.Context, filter TicketFilter, offset, limit int,
) ([]entity.Ticket, error) {
	result := []entity.Ticket{}
	tx := xcontext.DB(ctx).
		Preload("User").
		Preload("Event").
		Offset(offset).
		Order("created_at ASC")

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.EventID != "" {
		tx = tx.Where("event_id=?", filter.EventID)
	}

	if filter.Status != "" {
		tx = tx.Where("payment_status=?", filter.Status)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// GetByUserAndEvent returns the user's ticket for the event in any payment
// status.
func (r *ticketRepository) GetByUserAndEvent(
	ctx context.Context, userID, eventID string,
) (*entity.Ticket, error) {
	result := entity.Ticket{}
	err := xcontext.DB(ctx).
		Where("user_id=? AND event_id=?", userID, eventID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetActiveByUserAndEvent returns the user's ticket for the event which has
// not been rejected.
func (r *ticketRepository) GetActiveByUserAndEvent(
	ctx context.Context, userID, eventID string,
) (*entity.Ticket, error) {
	result := entity.Ticket{}
	err := xcontext.DB(ctx).
		Where("user_id=? AND event_id=? AND payment_status<>?", userID, eventID, entity.PaymentRejected).
		Order("created_at DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateProof stores proof metadata and moves the ticket to pending_proof.
// Only unpaid, pending or rejected tickets accept a proof.
func (r *ticketRepository) UpdateProof(ctx context.Context, id string, data *entity.Ticket) (bool, error) {
	updateMap := map[string]any{
		"payment_status":     entity.PaymentPendingProof,
		"transaction_ref":    data.TransactionRef,
		"proof_submitted_at": data.ProofSubmittedAt,
		"rejection_reason":   "",
	}

	if data.ProofURL != "" {
		updateMap["proof_url"] = data.ProofURL
		updateMap["proof_preview_url"] = data.ProofPreviewURL
	}

	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("id=? AND payment_status IN (?)", id, []entity.PaymentStatus{
			entity.PaymentUnpaid, entity.PaymentPendingProof, entity.PaymentRejected,
		}).
		Updates(updateMap)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *ticketRepository) Approve(
	ctx context.Context, id, reviewerID string, at time.Time, qrPayload string,
) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("id=? AND payment_status<>?", id, entity.PaymentPaid).
		Updates(map[string]any{
			"payment_status":   entity.PaymentPaid,
			"amount_paid":      gorm.Expr("amount_due"),
			"reviewer_id":      reviewerID,
			"reviewed_at":      at,
			"rejection_reason": "",
			"qr_payload":       qrPayload,
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *ticketRepository) Reject(
	ctx context.Context, id, reviewerID string, at time.Time, reason string,
) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("id=? AND payment_status<>?", id, entity.PaymentPaid).
		Updates(map[string]any{
			"payment_status":   entity.PaymentRejected,
			"reviewer_id":      reviewerID,
			"reviewed_at":      at,
			"rejection_reason": reason,
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

// MarkCheckedIn flips checked_in for a paid ticket. It reports false when
// another scan got there first or the ticket is not paid.
func (r *ticketRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("id=? AND checked_in=? AND payment_status=?", id, false, entity.PaymentPaid).
		Updates(map[string]any{
			"checked_in":    true,
			"checked_in_at": at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *ticketRepository) CountByStatus(ctx context.Context, eventID string) ([]GroupCount, error) {
	return countGroupBy(ctx, &entity.Ticket{}, "payment_status", func(tx *gorm.DB) *gorm.DB {
		if eventID == "" {
			return tx
		}

		return tx.Where("event_id=?", eventID)
	})
}

func (r *ticketRepository) CountCheckedIn(ctx context.Context, eventID string) (int64, error) {
	var count int64
	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).Where("checked_in=?", true)
	if eventID != "" {
		tx = tx.Where("event_id=?", eventID)
	}

	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ticketRepository) SumAmountPaid(ctx context.Context, eventID string) (int64, error) {
	var sum int64
	err := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Select("COALESCE(SUM(amount_paid), 0)").
		Where("event_id=? AND payment_status=?", eventID, entity.PaymentPaid).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}

	return sum, nil
}
