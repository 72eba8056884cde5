package entity

import (
	"database/sql"
	"time"

	"github.com/campus-events/backend/pkg/enum"
	"golang.org/x/exp/slices"
)

type EventStatus string

var (
	EventDraft     = enum.New(EventStatus("draft"))
	EventPublished = enum.New(EventStatus("published"))
	EventClosed    = enum.New(EventStatus("closed"))
)

type GroupType string

var (
	GroupSingle = enum.New(GroupType("single"))
	GroupDuo    = enum.New(GroupType("duo"))
	GroupTrio   = enum.New(GroupType("trio"))
)

// Size is the number of participants a ticket of this group type admits.
func (g GroupType) Size() int {
	switch g {
	case GroupDuo:
		return 2
	case GroupTrio:
		return 3
	default:
		return 1
	}
}

// PaymentDetails tells payers where to send money for a paid event. Payment
// happens out of band and is confirmed by the organizer.
type PaymentDetails struct {
	AccountName   string
	AccountNumber string
	BankCode      string
	UPIID         string
	Notes         string
}

type Event struct {
	Base

	CreatedBy string
	Creator   User `gorm:"foreignKey:CreatedBy"`

	Title       string
	Description string
	Venue       string
	StartTime   time.Time
	EndTime     time.Time
	PosterURL   string

	// Capacity is a ceiling on issued tickets; NULL means unlimited.
	Capacity    sql.NullInt64
	IssuedCount int64

	Price        int64
	PriceSingle  sql.NullInt64
	PriceDuo     sql.NullInt64
	PriceTrio    sql.NullInt64
	AllowedTiers Array[GroupType]

	Status   EventStatus
	IsPublic bool

	PaymentDetails PaymentDetails `gorm:"embedded;embeddedPrefix:payment_"`
}

// AllowsTier reports whether tickets of group type g can be issued. An event
// without explicit tiers only sells single tickets.
func (e *Event) AllowsTier(g GroupType) bool {
	if len(e.AllowedTiers) == 0 {
		return g == GroupSingle
	}

	return slices.Contains(e.AllowedTiers, g)
}

// TierPrice returns the price field configured for g, if any.
func (e *Event) TierPrice(g GroupType) (int64, bool) {
	var p sql.NullInt64
	switch g {
	case GroupSingle:
		p = e.PriceSingle
	case GroupDuo:
		p = e.PriceDuo
	case GroupTrio:
		p = e.PriceTrio
	}

	return p.Int64, p.Valid
}

func (e *Event) IsFull() bool {
	return e.Capacity.Valid && e.IssuedCount >= e.Capacity.Int64
}
