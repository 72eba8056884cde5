package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"math/big"
)

// HMAC returns the hex encoded HMAC of data keyed by secret.
func HMAC(hashFunc func() hash.Hash, data []byte, secret []byte) string {
	h := hmac.New(hashFunc, secret)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func HMACSHA256(data []byte, secret []byte) string {
	return HMAC(sha256.New, data, secret)
}

// ConstantTimeEqual compares a and b in time independent of their content.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomAlphabet returns n characters from an alphabet without
// look-alike symbols, for codes read by humans.
func GenerateRandomAlphabet(n uint) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[RandIntn(len(alphabet))]
	}
	return string(b)
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}
