package model

type GetMeRequest struct{}

type GetMeResponse User

type UpdateMeRequest struct {
	Name       string `json:"name" validate:"max=128"`
	RollNumber string `json:"roll_number" validate:"max=32"`
	Phone      string `json:"phone" validate:"max=32"`
}

type UpdateMeResponse User

type RequestUpgradeRequest struct {
	Reason string `json:"reason" validate:"required,max=1024"`
}

type RequestUpgradeResponse struct {
	ID string `json:"id"`
}

type GetUpgradeRequestsRequest struct {
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetUpgradeRequestsResponse struct {
	Requests []UpgradeRequest `json:"requests"`
}

type ReviewUpgradeRequest struct {
	ID     string `json:"id" validate:"required"`
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

type ReviewUpgradeResponse struct{}
