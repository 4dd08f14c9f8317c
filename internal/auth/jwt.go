package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shinyyama/book-market-backend/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the session claim. Version must match users.token_version for
// the claim to authenticate.
type Claims struct {
	ID      uint64     `json:"id"`
	Email   string     `json:"email"`
	Role    model.Role `json:"role"`
	Version int        `json:"ver"`
	jwt.RegisteredClaims
}

type Issuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration

	now func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), Issuer: issuer, TTL: ttl, now: time.Now}
}

func (j *Issuer) Issue(u *model.User) (string, error) {
	now := j.now()
	claims := Claims{
		ID:      u.ID,
		Email:   u.Email,
		Role:    u.Role,
		Version: u.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *Issuer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.ID != 0 {
		return c, nil
	}
	return nil, ErrInvalidToken
}
