package auth

import (
	"errors"
	"testing"
	"time"

	"trainingdesk/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	id := uuid.New()

	signed, err := tokens.Issue(id, model.RoleTrainer)
	require.NoError(t, err)

	actor, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, id, actor.ID)
	assert.Equal(t, model.RoleTrainer, actor.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("one", time.Hour).Issue(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Parse(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, err := tokens.Issue(uuid.New(), model.RoleStaff)
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Minute).Parse(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsUnknownRole(t *testing.T) {
	claims := Claims{
		Role:             "overlord",
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Parse(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
