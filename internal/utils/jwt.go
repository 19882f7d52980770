package utils // package utils provides helpers for token creation and verification

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and sent in the Authorization header when
// calling protected endpoints. They embed the user's id, email and role.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token used to obtain new access
// tokens. It is itself a JWT, signed with a secret distinct from the access
// token secret, and embeds only the user id. Tokens are stateless: nothing
// is stored server-side and there is no revocation list, so logging out is
// a client-side credential discard.
type RefreshToken struct {
	Token string
	Exp   time.Time
}

// ErrInvalidToken is returned when a token fails signature or expiry
// verification, or does not carry the expected claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the identity embedded in a verified access token.
type Claims struct {
	UserID uint64
	Email  string
	Role   string
}

// NewAccessToken builds and signs an HS256 JWT for a user. Claims: sub
// (user id), email, role, exp and iat.
func NewAccessToken(secret string, userID uint64, email, role string, ttlHours int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(userID, 10),
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 refresh JWT embedding only the
// user id. It must be signed with the refresh secret, never the access one.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry of an access token and
// returns its identity claims.
func ParseAccessToken(secret, raw string) (Claims, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return Claims{}, err
	}
	uid, err := subjectID(claims)
	if err != nil {
		return Claims{}, err
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uid, Email: email, Role: role}, nil
}

// ParseRefreshToken verifies a refresh token against the refresh secret and
// returns the embedded user id.
func ParseRefreshToken(secret, raw string) (uint64, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return 0, err
	}
	return subjectID(claims)
}

func parseHS256(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// subjectID extracts the sub claim as a user id. Numeric and string
// encodings are both accepted since JSON decodes numbers as float64.
func subjectID(claims jwt.MapClaims) (uint64, error) {
	switch v := claims["sub"].(type) {
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	}
	return 0, ErrInvalidToken
}
