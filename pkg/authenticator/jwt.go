package authenticator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type standardClaims struct {
	jwt.RegisteredClaims
	Object json.RawMessage `json:"obj,omitempty"`
}

type jwtTokenEngine struct {
	secret  []byte
	counter atomic.Int64
}

func NewTokenEngine(secret string) *jwtTokenEngine {
	return &jwtTokenEngine{secret: []byte(secret)}
}

func (e *jwtTokenEngine) Generate(expiration time.Duration, obj any) (string, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := standardClaims{
		Object: b,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			ID:        strconv.FormatInt(e.counter.Add(1), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.secret)
}

func (e *jwtTokenEngine) Verify(token string, obj any) error {
	var claims standardClaims
	_, err := jwt.ParseWithClaims(
		token, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return e.secret, nil
		},
	)
	if err != nil {
		return err
	}

	return json.Unmarshal(claims.Object, obj)
}
