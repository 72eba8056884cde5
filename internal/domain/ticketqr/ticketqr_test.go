package ticketqr

import (
	"bytes"
	"testing"

	"github.com/campus-events/backend/config"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer := NewSigner("qr-secret")

	raw, err := signer.Encode("t1", "e1", "u1")
	require.NoError(t, err)

	p, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "t1", p.TicketID)
	require.Equal(t, "e1", p.EventID)
	require.Equal(t, "u1", p.UserID)
	require.True(t, signer.Verify(p))
}

func TestSigner_MutatedSignature(t *testing.T) {
	signer := NewSigner("qr-secret")
	sig := signer.Sign("t1", "e1", "u1")

	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}

		p := &Payload{TicketID: "t1", EventID: "e1", UserID: "u1", Signature: string(mutated)}
		require.False(t, signer.Verify(p), "position %d", i)
	}
}

func TestSigner_MutatedField(t *testing.T) {
	signer := NewSigner("qr-secret")
	sig := signer.Sign("t1", "e1", "u1")

	require.False(t, signer.Verify(&Payload{TicketID: "t1", EventID: "e1", UserID: "u2", Signature: sig}))
	require.False(t, signer.Verify(&Payload{TicketID: "t2", EventID: "e1", UserID: "u1", Signature: sig}))
	require.False(t, signer.Verify(&Payload{TicketID: "t1", EventID: "e2", UserID: "u1", Signature: sig}))
	require.False(t, NewSigner("other").Verify(&Payload{TicketID: "t1", EventID: "e1", UserID: "u1", Signature: sig}))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "not json", raw: "hello", wantErr: ErrMalformed},
		{name: "empty object", raw: "{}", wantErr: ErrMalformed},
		{name: "missing signature", raw: `{"ticket_id":"t","event_id":"e","user_id":"u"}`, wantErr: ErrMalformed},
		{name: "ok", raw: `{"ticket_id":"t","event_id":"e","user_id":"u","signature":"ab"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Equal(t, tt.wantErr, err)
		})
	}
}

func TestSecret(t *testing.T) {
	cfg := config.Configs{}
	cfg.Auth.TokenSecret = "auth"

	secret, fallback := Secret(cfg)
	require.Equal(t, "auth", secret)
	require.True(t, fallback)

	cfg.Ticket.QRSecret = "qr"
	secret, fallback = Secret(cfg)
	require.Equal(t, "qr", secret)
	require.False(t, fallback)
}

func TestPNG(t *testing.T) {
	b, err := PNG(`{"ticket_id":"t"}`, 128)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))
}
