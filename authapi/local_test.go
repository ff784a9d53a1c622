package authapi

import (
	"context"
	"testing"
	"time"

	"eduadmin-client/models"
	"eduadmin-client/token"
	"eduadmin-client/utils/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T) *LocalProvider {
	t.Helper()
	cfg := &models.Config{
		AppName:         "eduadmin-test",
		LocalAuthSecret: "test-secret",
		LocalAuthTTL:    time.Hour,
	}
	provider := NewLocalProvider(cfg, logger.NewLogger("error", "text"))

	err := provider.Register("maria", "s3cret", models.User{
		ID:   "u-1",
		Role: models.RoleTeacher,
	})
	require.NoError(t, err)

	return provider
}

// TestLocalLogin tests a successful credential exchange and token shape
func TestLocalLogin(t *testing.T) {
	provider := testProvider(t)

	result, err := provider.Login(context.Background(), models.Credentials{
		Username: "maria",
		Password: "s3cret",
	})

	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.User)
	assert.Equal(t, "u-1", result.User.ID)

	claims, err := token.Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.False(t, claims.Expired())
}

// TestLocalLoginRejection tests wrong password and unknown user
func TestLocalLoginRejection(t *testing.T) {
	provider := testProvider(t)
	ctx := context.Background()

	result, err := provider.Login(ctx, models.Credentials{Username: "maria", Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid username or password", result.Message)

	result, err = provider.Login(ctx, models.Credentials{Username: "nobody", Password: "s3cret"})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

// TestLocalRenew tests token renewal for a live token
func TestLocalRenew(t *testing.T) {
	provider := testProvider(t)
	ctx := context.Background()

	result, err := provider.Login(ctx, models.Credentials{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)

	renewed, err := provider.Renew(ctx, result.Token)
	require.NoError(t, err)

	claims, err := token.Decode(renewed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

// TestLocalRenewRejectsMalformed tests renewal of garbage input
func TestLocalRenewRejectsMalformed(t *testing.T) {
	provider := testProvider(t)

	_, err := provider.Renew(context.Background(), "not-a-token")
	assert.Error(t, err)
}
