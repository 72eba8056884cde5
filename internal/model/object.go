package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type ShortUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ShortUser

	Email      string `json:"email,omitempty"`
	RollNumber string `json:"roll_number,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type UpgradeRequest struct {
	ID         string `json:"id"`
	User       User   `json:"user"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	ReviewerID string `json:"reviewer_id,omitempty"`
	ReviewedAt string `json:"reviewed_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type PaymentDetails struct {
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	BankCode      string `json:"bank_code,omitempty"`
	UPIID         string `json:"upi_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type Event struct {
	ID          string    `json:"id"`
	CreatedBy   string    `json:"created_by"`
	Creator     ShortUser `json:"creator"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	PosterURL   string    `json:"poster_url"`

	// Capacity is nil for unlimited events.
	Capacity    *int64 `json:"capacity"`
	IssuedCount int64  `json:"issued_count"`
	Full        bool   `json:"full"`

	Price        int64    `json:"price"`
	PriceSingle  *int64   `json:"price_single"`
	PriceDuo     *int64   `json:"price_duo"`
	PriceTrio    *int64   `json:"price_trio"`
	AllowedTiers []string `json:"allowed_tiers"`

	Status         string         `json:"status"`
	IsPublic       bool           `json:"is_public"`
	PaymentDetails PaymentDetails `json:"payment_details"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Discount struct {
	ID         string `json:"id"`
	EventID    string `json:"event_id"`
	Code       string `json:"code"`
	Percentage string `json:"percentage"`
	FlatAmount int64  `json:"flat_amount"`
	MaxUses    *int64 `json:"max_uses"`
	UsedCount  int64  `json:"used_count"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at"`
}

type Participant struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
}

type Ticket struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	User          User          `json:"user"`
	EventID       string        `json:"event_id"`
	Event         Event         `json:"event"`
	GroupType     string        `json:"group_type"`
	Participants  []Participant `json:"participants"`
	PaymentStatus string        `json:"payment_status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	AmountDue     int64         `json:"amount_due"`
	AmountPaid    int64         `json:"amount_paid"`
	DiscountCode  string        `json:"discount_code,omitempty"`

	TransactionRef   string `json:"transaction_ref,omitempty"`
	ProofURL         string `json:"proof_url,omitempty"`
	ProofPreviewURL  string `json:"proof_preview_url,omitempty"`
	ProofSubmittedAt string `json:"proof_submitted_at,omitempty"`
	ReviewerID       string `json:"reviewer_id,omitempty"`
	ReviewedAt       string `json:"reviewed_at,omitempty"`
	RejectionReason  string `json:"rejection_reason,omitempty"`

	CheckedIn   bool   `json:"checked_in"`
	CheckedInAt string `json:"checked_in_at,omitempty"`

	QRPayload string `json:"qr_payload,omitempty"`
	CreatedAt string `json:"created_at"`
}

type Attendance struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	TicketID  string `json:"ticket_id,omitempty"`
	Present   bool   `json:"present"`
	Source    string `json:"source"`
	ActorID   string `json:"actor_id"`
	CreatedAt string `json:"created_at"`
}

type WaitlistEntry struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	User      User   `json:"user"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}
