package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/csheth/notable/internal/apperr"
)

// Claims are the fields notable reads from an access token.
type Claims struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Issuer signs HS256 access tokens and tracks revoked ones until they expire.
type Issuer struct {
	secret  []byte
	ttl     time.Duration
	revoked *cache.Cache
	now     func() time.Time
}

// NewIssuer returns an issuer for secret. Tokens live for ttl.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: cache.New(ttl, 10*time.Minute),
		now:     time.Now,
	}
}

// Issue signs a token for user.
func (i *Issuer) Issue(user User) (string, Claims, error) {
	now := i.now()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"jti":     claims.TokenID,
		"iat":     now.Unix(),
		"exp":     claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", Claims{}, apperr.Internal(err)
	}
	return signed, claims, nil
}

// Parse validates a token and returns its claims. Expired, malformed and
// revoked tokens are rejected as unauthorized.
func (i *Issuer) Parse(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperr.Unauthorized("token expired")
		}
		return Claims{}, apperr.Unauthorized("invalid token")
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, apperr.Unauthorized("invalid claims")
	}

	claims := Claims{}
	claims.UserID, _ = mapClaims["user_id"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	claims.TokenID, _ = mapClaims["jti"].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if claims.UserID == "" || claims.TokenID == "" {
		return Claims{}, apperr.Unauthorized("invalid claims")
	}
	if _, revoked := i.revoked.Get(claims.TokenID); revoked {
		return Claims{}, apperr.Unauthorized("token revoked")
	}
	return claims, nil
}

// Revoke rejects the token until it would have expired anyway.
func (i *Issuer) Revoke(claims Claims) {
	remaining := claims.ExpiresAt.Sub(i.now())
	if remaining <= 0 {
		return
	}
	i.revoked.Set(claims.TokenID, true, remaining)
}
