package entity

import (
	"time"

	"github.com/campus-events/backend/pkg/enum"
)

type PaymentStatus string

var (
	PaymentUnpaid       = enum.New(PaymentStatus("unpaid"))
	PaymentPendingProof = enum.New(PaymentStatus("pending_proof"))
	PaymentPaid         = enum.New(PaymentStatus("paid"))
	PaymentRejected     = enum.New(PaymentStatus("rejected"))
)

type Participant struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
}

type Ticket struct {
	Base

	UserID string `gorm:"uniqueIndex:idx_ticket_user_event"`
	User   User   `gorm:"foreignKey:UserID"`

	EventID string `gorm:"uniqueIndex:idx_ticket_user_event;index"`
	Event   Event  `gorm:"foreignKey:EventID"`

	GroupType    GroupType
	Participants Array[Participant]

	PaymentStatus PaymentStatus `gorm:"index"`
	PaymentMethod string
	AmountDue     int64
	AmountPaid    int64
	DiscountCode  string

	TransactionRef   string
	ProofURL         string
	ProofPreviewURL  string
	ProofSubmittedAt *time.Time
	ReviewerID       string
	ReviewedAt       *time.Time
	RejectionReason  string

	CheckedIn   bool
	CheckedInAt *time.Time

	// QRPayload is set once the ticket is paid.
	QRPayload string
}
