package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogerio-castellano/order-tracker/internal/models"
)

var (
	jwtSecret = []byte("super-secret-key")
	accessTTL = 15 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

// Configure replaces the signing secret and access token lifetime.
func Configure(secret string, ttl time.Duration) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if ttl > 0 {
		accessTTL = ttl
	}
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	StoreID  int    `json:"store_id"`
	PersonID int    `json:"person_id"`
	jwt.RegisteredClaims
}

func GenerateToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		StoreID:  user.StoreID,
		PersonID: user.PersonID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken validates tokenStr and returns the identity it carries.
func ParseToken(tokenStr string) (Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return Caller{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return Caller{
		UserID:   userID,
		PersonID: claims.PersonID,
		StoreID:  claims.StoreID,
		Username: claims.Username,
		Role:     Role(claims.Role),
	}, nil
}

// TokenFromHeader extracts the bearer token of an Authorization header value.
func TokenFromHeader(authorization string) (string, error) {
	if !strings.HasPrefix(authorization, "Bearer ") {
		return "", fmt.Errorf("%w: missing bearer prefix", ErrInvalidToken)
	}
	return strings.TrimPrefix(authorization, "Bearer "), nil
}
