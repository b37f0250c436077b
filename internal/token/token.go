// Package token issues and parses the access tokens handed out after signup.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ErlanBelekov/mobile-signup/internal/domain"
)

const defaultTTL = 24 * time.Hour

type Issuer struct {
	key []byte
	ttl time.Duration
}

func NewIssuer(key []byte) *Issuer {
	return &Issuer{key: key, ttl: defaultTTL}
}

func (i *Issuer) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":           strconv.FormatInt(user.ID, 10),
		"mobile_number": user.MobileNumber,
		"iat":           now.Unix(),
		"exp":           now.Add(i.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Subject validates raw and returns its user id.
func (i *Issuer) Subject(raw string) (int64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return 0, domain.ErrUnauthorized
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, domain.ErrUnauthorized
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}
