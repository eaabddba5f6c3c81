package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried inside a session token: the standard
// registered claims (sub holds the user's email) plus the user id.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Identity is the decoded, validated content of a session token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// TokenCodec signs and validates session tokens with an HMAC secret.
// The secret and lifetime are fixed at construction and never change.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec signing with the given secret; tokens
// expire ttl after issuance.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Encode mints a signed HS256 token for the given user.
func (c *TokenCodec) Encode(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Decode verifies a token and extracts the identity it carries.
// Any failure (bad signature, expiry, missing subject, unparseable user id)
// yields ok == false with no further detail, so callers cannot build an
// oracle on token structure.
func (c *TokenCodec) Decode(tokenString string) (Identity, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		// Strict base64 keeps a token's encoding canonical: without it a
		// flipped padding bit in the signature segment still decodes.
		jwt.WithStrictDecoding(),
	)
	if err != nil || !token.Valid {
		return Identity{}, false
	}

	if claims.Subject == "" {
		return Identity{}, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, false
	}

	return Identity{UserID: userID, Email: claims.Subject}, true
}
