package services

import (
	"context"
	"testing"

	"brewshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinBeerClub(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := &models.BeerClubMember{FirstName: "Ada", LastName: "Brewer", Email: "ada@example.com", Phone: "5550100"}
	require.NoError(t, env.signups.JoinBeerClub(ctx, member))
	assert.NotZero(t, member.ID)

	err := env.signups.JoinBeerClub(ctx, &models.BeerClubMember{Email: "bad", Phone: "+1 555 0100 0000 00"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "first_name")
	assert.Contains(t, verr.Fields, "last_name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "phone")
}

func TestSubmitContactMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	msg := &models.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Do you ship to Canada?"}
	require.NoError(t, env.signups.SubmitContactMessage(ctx, msg))
	assert.NotZero(t, msg.ID)

	err := env.signups.SubmitContactMessage(ctx, &models.ContactMessage{Name: "Ada"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Fields["email"])
	assert.Equal(t, "This field is required.", verr.Fields["message"])
}
