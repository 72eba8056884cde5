package ticketqr

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campus-events/backend/config"
	"github.com/campus-events/backend/pkg/crypto"
	"github.com/skip2/go-qrcode"
)

var ErrMalformed = errors.New("malformed qr payload")

// Payload is the content encoded into a ticket QR image.
type Payload struct {
	TicketID  string `json:"ticket_id"`
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	Signature string `json:"signature"`
}

type Signer struct {
	secret string
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Secret returns the QR signing secret and whether it had to fall back to the
// auth token secret.
func Secret(cfg config.Configs) (string, bool) {
	if cfg.Ticket.QRSecret != "" {
		return cfg.Ticket.QRSecret, false
	}

	return cfg.Auth.TokenSecret, true
}

func (s *Signer) Sign(ticketID, eventID, userID string) string {
	data := fmt.Sprintf("%s|%s|%s", ticketID, eventID, userID)
	return crypto.HMACSHA256([]byte(data), []byte(s.secret))
}

// Encode builds the signed payload string of a ticket.
func (s *Signer) Encode(ticketID, eventID, userID string) (string, error) {
	b, err := json.Marshal(Payload{
		TicketID:  ticketID,
		EventID:   eventID,
		UserID:    userID,
		Signature: s.Sign(ticketID, eventID, userID),
	})
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func Parse(raw string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, ErrMalformed
	}

	if p.TicketID == "" || p.EventID == "" || p.UserID == "" || p.Signature == "" {
		return nil, ErrMalformed
	}

	return &p, nil
}

// Verify recomputes the signature of p and compares it in constant time.
func (s *Signer) Verify(p *Payload) bool {
	return crypto.ConstantTimeEqual(s.Sign(p.TicketID, p.EventID, p.UserID), p.Signature)
}

// PNG renders payload as a QR code image of size x size pixels.
func PNG(payload string, size int) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, size)
}
