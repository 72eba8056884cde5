package model

type ScanCheckInRequest struct {
	Payload string `json:"payload" validate:"required"`
}

type ScanCheckInResponse struct {
	Already      bool          `json:"already"`
	TicketID     string        `json:"ticket_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	RollNumber   string        `json:"roll_number"`
	EventTitle   string        `json:"event_title"`
	GroupType    string        `json:"group_type"`
	Participants []Participant `json:"participants"`
	CheckedInAt  string        `json:"checked_in_at"`
}

type ManualCheckInRequest struct {
	EventID string `json:"event_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
	Present bool   `json:"present"`
}

type ManualCheckInResponse struct {
	Record Attendance `json:"record"`

	// TicketID and TicketCheckedIn describe the user's ticket for the event,
	// which manual records never modify.
	TicketID        string `json:"ticket_id,omitempty"`
	TicketCheckedIn bool   `json:"ticket_checked_in"`
}

type GetAttendanceRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

type TicketAttendance struct {
	TicketID    string `json:"ticket_id"`
	User        User   `json:"user"`
	CheckedIn   bool   `json:"checked_in"`
	CheckedInAt string `json:"checked_in_at,omitempty"`
}

type GetAttendanceResponse struct {
	Records []Attendance       `json:"records"`
	Tickets []TicketAttendance `json:"tickets"`
}
