package auth

import (
	"errors"
	"sync"
	"time"

	"taskbuddy-api/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	mu       sync.RWMutex
	settings = fromConfig(config.Default().Auth)
)

type tokenSettings struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func fromConfig(c config.AuthConfig) tokenSettings {
	return tokenSettings{
		secret:   []byte(c.JWTSecret),
		issuer:   c.Issuer,
		audience: c.Audience,
		ttl:      c.TokenTTL,
	}
}

// Configure replaces the signing secret, issuer, audience and token lifetime.
func Configure(c config.AuthConfig) {
	mu.Lock()
	defer mu.Unlock()
	settings = fromConfig(c)
}

func current() tokenSettings {
	mu.RLock()
	defer mu.RUnlock()
	return settings
}

// Claims represents the JWT claims
type Claims struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	jwt.RegisteredClaims
}

// Profile is the identity carried by a token
type Profile struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

// GenerateToken generates a JWT token for the given profile
func GenerateToken(p Profile) (string, error) {
	s := current()
	now := time.Now()
	claims := Claims{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	s := current()
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}

// Profile returns the identity stored in the claims
func (c *Claims) Profile() Profile {
	return Profile{
		UserID:      c.UserID,
		Username:    c.Username,
		DisplayName: c.DisplayName,
		PhotoURL:    c.PhotoURL,
	}
}
