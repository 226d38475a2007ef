package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogerio-castellano/order-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	user := models.User{ID: 7, PersonID: 3, StoreID: 2, Username: "ana", Role: "staff"}

	token, err := GenerateToken(user)
	require.NoError(t, err)

	caller, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, Caller{UserID: 7, PersonID: 3, StoreID: 2, Username: "ana", Role: RoleStaff}, caller)
	assert.True(t, caller.HasRole(RoleAdmin, RoleStaff))
	assert.False(t, caller.HasRole(RoleAdmin))
}

func TestParseToken_Rejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		signed, err := token.SignedString([]byte("another-secret"))
		require.NoError(t, err)

		_, err = ParseToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		})
		signed, err := token.SignedString(jwtSecret)
		require.NoError(t, err)

		_, err = ParseToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = TokenFromHeader("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRefreshStore_SingleUse(t *testing.T) {
	store := NewMemoryRefreshStore(time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, 42)
	require.NoError(t, err)

	userID, err := store.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestMemoryRefreshStore_Expired(t *testing.T) {
	store := NewMemoryRefreshStore(-time.Second)
	token, err := store.Issue(context.Background(), 1)
	require.NoError(t, err)

	_, err = store.Consume(context.Background(), token)
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestCallerContext(t *testing.T) {
	_, ok := CallerFrom(context.Background())
	assert.False(t, ok)

	ctx := WithCaller(context.Background(), Caller{UserID: 1, Role: RoleAdmin})
	c, ok := CallerFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, c.Role)
}
