package model

type GetEventStatisticRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

type GetEventStatisticResponse struct {
	EventID         string           `json:"event_id"`
	TicketsByStatus map[string]int64 `json:"tickets_by_status"`
	TotalTickets    int64            `json:"total_tickets"`
	CheckedIn       int64            `json:"checked_in"`
	Revenue         string           `json:"revenue"`
	RecordsBySource map[string]int64 `json:"records_by_source"`
	WaitlistSize    int64            `json:"waitlist_size"`
}

type GetPlatformStatisticRequest struct{}

type PopularEvent struct {
	EventID string `json:"event_id"`
	Tickets int64  `json:"tickets"`
}

type GetPlatformStatisticResponse struct {
	UsersByRole    map[string]int64 `json:"users_by_role"`
	EventsByStatus map[string]int64 `json:"events_by_status"`
	TotalTickets   int64            `json:"total_tickets"`
	CheckedIn      int64            `json:"checked_in"`
	PopularEvents  []PopularEvent   `json:"popular_events"`
}
