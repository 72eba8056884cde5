package authenticator_test

import (
	"testing"
	"time"

	"github.com/campus-events/backend/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

type claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func Test_TokenEngine(t *testing.T) {
	signer := authenticator.NewTokenEngine("secret")

	testCases := []struct {
		name       string
		expiration time.Duration
		verifier   authenticator.TokenEngine
		wantErr    bool
	}{
		{
			name:       "round trip",
			expiration: time.Minute,
			verifier:   signer,
		},
		{
			name:       "expired",
			expiration: -time.Second,
			verifier:   signer,
			wantErr:    true,
		},
		{
			name:       "other secret",
			expiration: time.Minute,
			verifier:   authenticator.NewTokenEngine("other"),
			wantErr:    true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			token, err := signer.Generate(tt.expiration, claims{ID: "user1", Role: "committee"})
			require.NoError(t, err)

			var got claims
			err = tt.verifier.Verify(token, &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, claims{ID: "user1", Role: "committee"}, got)
		})
	}
}

func Test_TokenEngine_UniqueTokens(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")

	first, err := engine.Generate(time.Minute, claims{ID: "user1"})
	require.NoError(t, err)
	second, err := engine.Generate(time.Minute, claims{ID: "user1"})
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func Test_TokenEngine_Malformed(t *testing.T) {
	var got claims
	require.Error(t, authenticator.NewTokenEngine("secret").Verify("not-a-token", &got))
}
