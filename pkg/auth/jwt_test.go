package auth_test

import (
	"testing"
	"time"

	"github.com/eduback/pkg/auth"
	"github.com/eduback/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *auth.TokenManager {
	return auth.NewTokenManager(&config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Issuer:        "eduback-test",
		AccessExpire:  900,
		RefreshExpire: 604800,
	})
}

func testPayload() *auth.TokenPayload {
	return &auth.TokenPayload{
		UserID:      42,
		Email:       "alice@example.com",
		Username:    "alice",
		Role:        "teacher",
		Permissions: []string{"VIEW_COURSES", "MANAGE_ASSIGNMENTS"},
	}
}

func TestGenerateAndVerifyTokens(t *testing.T) {
	tm := newTestManager()

	pair, err := tm.GenerateTokens(testPayload())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := tm.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, []string{"VIEW_COURSES", "MANAGE_ASSIGNMENTS"}, claims.Permissions)
	assert.Equal(t, "eduback-test", claims.Issuer)
}

func TestRefreshTokenCarriesReducedClaims(t *testing.T) {
	tm := newTestManager()

	pair, err := tm.GenerateTokens(testPayload())
	require.NoError(t, err)

	claims, err := tm.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	tm := newTestManager()

	pair, err := tm.GenerateTokens(testPayload())
	require.NoError(t, err)

	// 刷新令牌不能当访问令牌用，反之亦然
	_, err = tm.VerifyAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = tm.VerifyRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestExpiredTokenIsDistinguishedFromInvalid(t *testing.T) {
	tm := newTestManager()
	tm.Now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := tm.GenerateTokens(testPayload())
	require.NoError(t, err)

	tm.Now = time.Now
	_, err = tm.VerifyAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)

	_, err = tm.VerifyAccessToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestWrongSecretIsInvalid(t *testing.T) {
	tm := newTestManager()
	pair, err := tm.GenerateTokens(testPayload())
	require.NoError(t, err)

	other := auth.NewTokenManager(&config.JWTConfig{
		AccessSecret:  "a-different-secret",
		RefreshSecret: "another-different-secret",
		Issuer:        "eduback-test",
		AccessExpire:  900,
		RefreshExpire: 604800,
	})

	_, err = other.VerifyAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", auth.ExtractBearer("Bearer abc.def.ghi"))
	assert.Equal(t, "", auth.ExtractBearer(""))
	assert.Equal(t, "", auth.ExtractBearer("Bearer "))
	assert.Equal(t, "", auth.ExtractBearer("Basic abc"))
	assert.Equal(t, "", auth.ExtractBearer("abc.def.ghi"))
}
