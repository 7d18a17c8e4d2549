package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &memRules{}
	svc := NewRuleService(store)

	rule, err := svc.Create(ctx, "alice", RuleInput{Name: "notes", Type: " Study Notes ", Description: "Lecture notes"})
	require.NoError(t, err)
	assert.Equal(t, "Study Notes", rule.Type)
	assert.Equal(t, "alice", rule.Username)

	_, err = svc.Create(ctx, "alice", RuleInput{Name: "notes", Type: "Other", Description: "x"})
	assert.ErrorIs(t, err, ErrRuleExists)

	_, err = svc.Create(ctx, "bob", RuleInput{Name: "notes", Type: "Study Notes", Description: "Bob's notes"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "alice", RuleInput{Name: "notes", Type: "Class Notes", Description: "Updated"})
	require.NoError(t, err)
	assert.Equal(t, "Class Notes", updated.Type)
	assert.Equal(t, "Updated", updated.Description)

	_, err = svc.Update(ctx, "alice", RuleInput{Name: "missing", Type: "A", Description: "B"})
	assert.ErrorIs(t, err, ErrRuleNotFound)

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.ErrorIs(t, svc.Delete(ctx, "bob", list[0].ID), ErrRuleNotFound)
	require.NoError(t, svc.Delete(ctx, "alice", list[0].ID))

	list, err = svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRuleValidation(t *testing.T) {
	svc := NewRuleService(&memRules{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", RuleInput{Name: "notes", Type: "  ", Description: "d"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, "", RuleInput{Name: "notes", Type: "T", Description: "d"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, svc.Delete(ctx, "alice", 0), ErrInvalidInput)
}
