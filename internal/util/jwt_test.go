package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret-with-at-least-32-chars"

func TestGenerateAndParseJWT(t *testing.T) {
	tok, err := GenerateJWT("user_1", "a@example.com", "codepath", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)

	_, err = ParseJWT(tok, "wrong-secret")
	assert.Error(t, err)
}

func TestParseJWT_Rejects(t *testing.T) {
	expired, err := GenerateJWT("user_1", "", "codepath", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)

	noSubject, err := GenerateJWT("", "", "codepath", secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(noSubject, secret)
	assert.Error(t, err)

	// 只接受 HS256
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_1"},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = ParseJWT(hs512, secret)
	assert.Error(t, err)
}

func TestGetUserFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetUserFromContext(c))
	assert.Zero(t, GetUserID(c))

	claims := &Claims{Email: "a@example.com"}
	c.Set(CtxClaims, claims)
	c.Set(CtxUserID, uint(7))
	assert.Same(t, claims, GetUserFromContext(c))
	assert.Equal(t, uint(7), GetUserID(c))
}

func TestQueryInt(t *testing.T) {
	assert.Equal(t, 5, QueryInt("", 5, 1, 20))
	assert.Equal(t, 5, QueryInt("abc", 5, 1, 20))
	assert.Equal(t, 20, QueryInt("500", 5, 1, 20))
	assert.Equal(t, 1, QueryInt("-3", 5, 1, 20))
	assert.Equal(t, 12, QueryInt("12", 5, 1, 20))
	assert.Equal(t, uint(42), MustParseUint("42"))
	assert.Zero(t, MustParseUint("x"))
}
