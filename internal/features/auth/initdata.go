package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingSignature = errors.New("launch data carries no hash")
	ErrInvalidSignature = errors.New("launch data signature mismatch")
	ErrStalePayload     = errors.New("launch data expired")
	ErrMissingIdentity  = errors.New("launch data carries no user")
)

// Identity is the user object embedded in verified launch data.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// VerifyInitData checks the signature and freshness of a Telegram WebApp
// launch-data string and returns the embedded identity.
//
// The signature scheme is Telegram's: the secret key is
// HMAC-SHA256("WebAppData", botToken), and the signed message is the
// remaining key=value pairs sorted by key and joined with newlines.
func VerifyInitData(initData, botToken string, maxAge time.Duration, now time.Time) (*Identity, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse launch data: %w", err)
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return nil, ErrMissingSignature
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secretKey := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	expected := hmacSHA256(secretKey, []byte(dataCheckString))

	received, err := hex.DecodeString(receivedHash)
	if err != nil || !hmac.Equal(expected, received) {
		return nil, ErrInvalidSignature
	}

	authDate, _ := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if now.Sub(time.Unix(authDate, 0)) > maxAge {
		return nil, ErrStalePayload
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrMissingIdentity
	}

	var identity Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil {
		return nil, fmt.Errorf("failed to parse user payload: %w", err)
	}

	return &identity, nil
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
