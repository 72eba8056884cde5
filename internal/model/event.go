package model

type EventInput struct {
	Title       string `json:"title" validate:"max=256"`
	Description string `json:"description"`
	Venue       string `json:"venue" validate:"max=256"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`

	Capacity    *int64   `json:"capacity" validate:"omitempty,gte=0"`
	Price       *int64   `json:"price" validate:"omitempty,gte=0"`
	PriceSingle *int64   `json:"price_single" validate:"omitempty,gte=0"`
	PriceDuo    *int64   `json:"price_duo" validate:"omitempty,gte=0"`
	PriceTrio   *int64   `json:"price_trio" validate:"omitempty,gte=0"`
	Tiers       []string `json:"allowed_tiers" validate:"omitempty,dive,oneof=single duo trio"`

	Status   string `json:"status" validate:"omitempty,oneof=draft published closed"`
	IsPublic *bool  `json:"is_public"`

	PaymentDetails *PaymentDetails `json:"payment_details"`
}

type CreateEventRequest struct {
	EventInput
}

type CreateEventResponse struct {
	ID string `json:"id"`
}

type UpdateEventRequest struct {
	ID string `json:"id" validate:"required"`
	EventInput

	// ClearCapacity makes the event unlimited again.
	ClearCapacity bool `json:"clear_capacity"`
}

type UpdateEventResponse Event

type DeleteEventRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteEventResponse struct{}

type GetEventRequest struct {
	ID string `json:"id" validate:"required"`
}

type GetEventResponse Event

type GetEventsRequest struct {
	Q      string `json:"q"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetEventsResponse struct {
	Events []Event `json:"events"`
}

type GetMyEventsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyEventsResponse struct {
	Events []Event `json:"events"`
}

type UploadEventPosterRequest struct {
	ID string `json:"id" validate:"required"`
}

type UploadEventPosterResponse struct {
	URL string `json:"url"`
}
