package model

type JoinWaitlistRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Note    string `json:"note" validate:"max=512"`
}

type JoinWaitlistResponse WaitlistEntry

type GetWaitlistRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

type GetWaitlistResponse struct {
	Entries []WaitlistEntry `json:"entries"`
}

type LeaveWaitlistRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

type LeaveWaitlistResponse struct{}
