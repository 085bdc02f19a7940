package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoInitData       = errors.New("missing init data")
	ErrBadSignature     = errors.New("invalid init data signature")
	ErrInitDataExpired  = errors.New("init data expired")
	ErrMalformedPayload = errors.New("malformed init data payload")
)

// TelegramUser — поле user из initData Telegram WebApp.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// ValidateInitData проверяет подпись initData по официальному алгоритму
// Telegram: data-check-string из отсортированных пар key=value (без hash),
// секрет HMAC-SHA256("WebAppData", botToken), сравнение в constant time.
func ValidateInitData(initData, botToken string, maxAge time.Duration, now time.Time) (*TelegramUser, error) {
	if initData == "" {
		return nil, ErrNoInitData
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrMalformedPayload
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return nil, ErrBadSignature
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	if maxAge > 0 && now.Sub(time.Unix(authDate, 0)) > maxAge {
		return nil, ErrInitDataExpired
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(receivedHash)) {
		return nil, ErrBadSignature
	}

	return parseUser(values.Get("user"))
}

// ParseInitDataUnsafe разбирает initData без проверки подписи.
// Только для dev-режима (auth.skip_validation).
func ParseInitDataUnsafe(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	return parseUser(values.Get("user"))
}

func parseUser(raw string) (*TelegramUser, error) {
	if raw == "" {
		return nil, ErrMalformedPayload
	}
	var u TelegramUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, ErrMalformedPayload
	}
	if u.ID <= 0 {
		return nil, ErrMalformedPayload
	}
	return &u, nil
}
