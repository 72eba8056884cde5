package model

type CreateDiscountRequest struct {
	EventID    string `json:"event_id" validate:"required"`
	Code       string `json:"code" validate:"max=32"`
	Percentage string `json:"percentage"`
	FlatAmount int64  `json:"flat_amount" validate:"gte=0"`
	MaxUses    *int64 `json:"max_uses" validate:"omitempty,gt=0"`
}

type CreateDiscountResponse Discount

type GetDiscountsRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

type GetDiscountsResponse struct {
	Discounts []Discount `json:"discounts"`
}

type SetDiscountActiveRequest struct {
	ID     string `json:"id" validate:"required"`
	Active bool   `json:"active"`
}

type SetDiscountActiveResponse struct{}

type PreviewPriceRequest struct {
	EventID   string `json:"event_id" validate:"required"`
	GroupType string `json:"group_type"`
	Code      string `json:"code"`
}

type PreviewPriceResponse struct {
	BasePrice int64 `json:"base_price"`
	Price     int64 `json:"price"`
	Applied   bool  `json:"applied"`
}
