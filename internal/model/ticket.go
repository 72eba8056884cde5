package model

type IssueTicketRequest struct {
	EventID       string        `json:"event_id" validate:"required"`
	GroupType     string        `json:"group_type" validate:"omitempty,oneof=single duo trio"`
	Participants  []Participant `json:"participants" validate:"max=8"`
	DiscountCode  string        `json:"discount_code" validate:"max=32"`
	PaymentMethod string        `json:"payment_method" validate:"max=32"`
}

type IssueTicketResponse struct {
	Ticket Ticket `json:"ticket"`

	// PaymentDetails is set when the ticket still has to be paid.
	PaymentDetails *PaymentDetails `json:"payment_details,omitempty"`
}

type SubmitPaymentProofRequest struct {
	TicketID       string `json:"ticket_id" validate:"required"`
	TransactionRef string `json:"transaction_ref" validate:"required,max=128"`
}

type SubmitPaymentProofResponse Ticket

type ReviewPaymentRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason" validate:"max=512"`
}

type ReviewPaymentResponse Ticket

type GetMyTicketsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type GetTicketRequest struct {
	ID string `json:"id" validate:"required"`
}

type GetTicketResponse struct {
	Ticket Ticket `json:"ticket"`

	// QRImage is a base64 encoded PNG of the payload, only for paid tickets.
	QRImage string `json:"qr_image,omitempty"`
}

type GetEventTicketsRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=unpaid pending_proof paid rejected"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetEventTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}
