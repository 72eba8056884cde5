package model

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/campus-events/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(DefaultTimeLayout)
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}

	v := n.Int64
	return &v
}

func ConvertShortUser(user *entity.User) ShortUser {
	if user == nil {
		return ShortUser{}
	}

	return ShortUser{ID: user.ID, Name: user.Name}
}

func ConvertUser(user *entity.User, includeSensitive bool) User {
	if user == nil {
		return User{}
	}

	u := User{
		ShortUser:  ConvertShortUser(user),
		RollNumber: user.RollNumber,
		Role:       string(user.Role),
		CreatedAt:  user.CreatedAt.Format(DefaultTimeLayout),
	}

	if includeSensitive {
		u.Email = user.Email
		u.Phone = user.Phone
	}

	return u
}

func ConvertUpgradeRequest(req *entity.UpgradeRequest) UpgradeRequest {
	return UpgradeRequest{
		ID:         req.ID,
		User:       ConvertUser(&req.User, true),
		Reason:     req.Reason,
		Status:     string(req.Status),
		ReviewerID: req.ReviewerID,
		ReviewedAt: formatTime(req.ReviewedAt),
		CreatedAt:  req.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertPaymentDetails(d entity.PaymentDetails) PaymentDetails {
	return PaymentDetails{
		AccountName:   d.AccountName,
		AccountNumber: d.AccountNumber,
		BankCode:      d.BankCode,
		UPIID:         d.UPIID,
		Notes:         d.Notes,
	}
}

func ConvertEvent(event *entity.Event) Event {
	if event == nil {
		return Event{}
	}

	tiers := []string{}
	for _, t := range event.AllowedTiers {
		tiers = append(tiers, string(t))
	}

	if len(tiers) == 0 {
		tiers = append(tiers, string(entity.GroupSingle))
	}

	return Event{
		ID:             event.ID,
		CreatedBy:      event.CreatedBy,
		Creator:        ConvertShortUser(&event.Creator),
		Title:          event.Title,
		Description:    event.Description,
		Venue:          event.Venue,
		StartTime:      event.StartTime.Format(DefaultTimeLayout),
		EndTime:        event.EndTime.Format(DefaultTimeLayout),
		PosterURL:      event.PosterURL,
		Capacity:       nullInt(event.Capacity),
		IssuedCount:    event.IssuedCount,
		Full:           event.IsFull(),
		Price:          event.Price,
		PriceSingle:    nullInt(event.PriceSingle),
		PriceDuo:       nullInt(event.PriceDuo),
		PriceTrio:      nullInt(event.PriceTrio),
		AllowedTiers:   tiers,
		Status:         string(event.Status),
		IsPublic:       event.IsPublic,
		PaymentDetails: ConvertPaymentDetails(event.PaymentDetails),
		CreatedAt:      event.CreatedAt.Format(DefaultTimeLayout),
		UpdatedAt:      event.UpdatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertDiscount(d *entity.Discount) Discount {
	return Discount{
		ID:         d.ID,
		EventID:    d.EventID,
		Code:       d.Code,
		Percentage: d.Percentage.String(),
		FlatAmount: d.FlatAmount,
		MaxUses:    nullInt(d.MaxUses),
		UsedCount:  d.UsedCount,
		Active:     d.Active,
		CreatedAt:  d.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertParticipants(ps []entity.Participant) []Participant {
	out := []Participant{}
	for _, p := range ps {
		out = append(out, Participant{Name: p.Name, RollNumber: p.RollNumber})
	}

	return out
}

// ConvertTicket hides the QR payload unless includeQR is set; only the ticket
// holder and organizers may see it.
func ConvertTicket(ticket *entity.Ticket, includeQR bool) Ticket {
	t := Ticket{
		ID:               ticket.ID,
		UserID:           ticket.UserID,
		User:             ConvertUser(&ticket.User, true),
		EventID:          ticket.EventID,
		Event:            ConvertEvent(&ticket.Event),
		GroupType:        string(ticket.GroupType),
		Participants:     ConvertParticipants(ticket.Participants),
		PaymentStatus:    string(ticket.PaymentStatus),
		PaymentMethod:    ticket.PaymentMethod,
		AmountDue:        ticket.AmountDue,
		AmountPaid:       ticket.AmountPaid,
		DiscountCode:     ticket.DiscountCode,
		TransactionRef:   ticket.TransactionRef,
		ProofURL:         ticket.ProofURL,
		ProofPreviewURL:  ticket.ProofPreviewURL,
		ProofSubmittedAt: formatTime(ticket.ProofSubmittedAt),
		ReviewerID:       ticket.ReviewerID,
		ReviewedAt:       formatTime(ticket.ReviewedAt),
		RejectionReason:  ticket.RejectionReason,
		CheckedIn:        ticket.CheckedIn,
		CheckedInAt:      formatTime(ticket.CheckedInAt),
		CreatedAt:        ticket.CreatedAt.Format(DefaultTimeLayout),
	}

	if includeQR {
		t.QRPayload = ticket.QRPayload
	}

	return t
}

func ConvertAttendance(a *entity.Attendance) Attendance {
	return Attendance{
		ID:        strconv.FormatInt(a.ID, 10),
		EventID:   a.EventID,
		UserID:    a.UserID,
		TicketID:  a.TicketID,
		Present:   a.Present,
		Source:    string(a.Source),
		ActorID:   a.ActorID,
		CreatedAt: a.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertWaitlistEntry(w *entity.WaitlistEntry) WaitlistEntry {
	return WaitlistEntry{
		ID:        w.ID,
		EventID:   w.EventID,
		User:      ConvertUser(&w.User, true),
		Note:      w.Note,
		CreatedAt: w.CreatedAt.Format(DefaultTimeLayout),
	}
}
