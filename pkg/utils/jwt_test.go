//go:build !integration

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT("s3cret", "analyst-7", RoleAnalyst, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "analyst-7", claims.UserID)
	assert.Equal(t, RoleAnalyst, claims.Role)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("s3cret", "u1", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "s3cret")
	assert.Error(t, err)
}

func TestGenerateJWT_NoSecret(t *testing.T) {
	_, err := GenerateJWT("", "u1", RoleAdmin, time.Hour)
	assert.Error(t, err)
}
