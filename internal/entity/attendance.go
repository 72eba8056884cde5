package entity

import "github.com/campus-events/backend/pkg/enum"

type AttendanceSource string

var (
	AttendanceQR     = enum.New(AttendanceSource("qr"))
	AttendanceManual = enum.New(AttendanceSource("manual"))
)

// Attendance is an append-only audit record. Whether a ticket is checked in
// is derived from Ticket.CheckedIn, not from this log.
type Attendance struct {
	SnowFlakeBase

	EventID  string `gorm:"index"`
	UserID   string `gorm:"index"`
	TicketID string
	Present  bool
	Source   AttendanceSource
	ActorID  string
}
