package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m, err := NewManager("s3cret", time.Hour)
	require.NoError(t, err)

	id := uuid.New()
	token, err := m.GenerateToken(id, "owner@shop.in", "Owner", "OWNER", []string{"report:view"}, "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "OWNER", claims.Role)
	assert.True(t, claims.HasPrivilege("report:view"))
	assert.False(t, claims.HasPrivilege("stock:adjust"))
}

func TestManager_RejectsForeignSecretAndExpiry(t *testing.T) {
	a, _ := NewManager("a", time.Hour)
	b, _ := NewManager("b", time.Hour)
	token, err := a.GenerateToken(uuid.New(), "x@y.z", "X", "STAFF", nil, "")
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := &Manager{secret: []byte("a"), ttl: -time.Minute}
	token, err = expired.GenerateToken(uuid.New(), "x@y.z", "X", "STAFF", nil, "")
	require.NoError(t, err)
	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}
