package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-nlsql/api/models"
)

const testSecret = "test-secret"

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("correct horse", "not-a-hash"))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-123", testSecret, time.Hour)
	require.NoError(t, err)

	userID, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestValidateJWT_Failures(t *testing.T) {
	expired, err := GenerateJWT("u", testSecret, -time.Minute)
	require.NoError(t, err)

	valid, err := GenerateJWT("u", testSecret, time.Hour)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.CustomClaims{
		UserID:           "u",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"malformed", "not.a.jwt", testSecret, ErrTokenMalformed},
		{"expired", expired, testSecret, ErrTokenExpired},
		{"wrong secret", valid, "other-secret", ErrTokenInvalid},
		{"missing user", noUser, testSecret, ErrTokenClaimsInvalid},
		{"wrong issuer", otherIssuer, testSecret, ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJWT(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
