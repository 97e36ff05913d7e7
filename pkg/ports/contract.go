package ports

import (
	"context"
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunQuestionStoreContract runs a suite of tests verifying that a
// QuestionStore implementation adheres to the interface contract.
// Adapters call this from their own tests against a fresh store.
func RunQuestionStoreContract(t *testing.T, store QuestionStore) {
	ctx := context.Background()
	const category = "contract-cat"

	seed := domain.Question{
		ID:             "q1",
		Step:           1,
		Order:          1,
		Text:           "What fuel does your boiler use?",
		MultipleChoice: true,
		Status:         domain.StatusActive,
		Options:        []domain.Option{{Text: "Gas"}, {Text: "Electric", Cost: 40}},
	}

	t.Run("Create and List", func(t *testing.T) {
		created, err := store.Create(ctx, category, seed)
		require.NoError(t, err, "Create should not return error")
		assert.Equal(t, seed.ID, created.ID)

		listed, err := store.List(ctx, category, ListOptions{})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, seed.Text, listed[0].Text)
		assert.Equal(t, seed.Options, listed[0].Options)
	})

	t.Run("Update Fields", func(t *testing.T) {
		text := "What fuel does your boiler burn?"
		updated, err := store.Update(ctx, category, "q1", QuestionPatch{Text: &text})
		require.NoError(t, err)
		assert.Equal(t, text, updated.Text)
		assert.Equal(t, seed.Options, updated.Options, "untouched fields survive a patch")
	})

	t.Run("Set and Clear Conditional", func(t *testing.T) {
		_, err := store.Create(ctx, category, domain.Question{
			ID: "q2", Step: 1, Order: 2, Text: "Which boiler type?",
			MultipleChoice: true, Status: domain.StatusActive,
			Options: []domain.Option{{Text: "Combi"}},
		})
		require.NoError(t, err)

		rule := &domain.ConditionalDisplay{
			GroupOperator: domain.OperatorAND,
			Conditions: []domain.Condition{
				{SourceID: "q1", Operator: domain.OperatorOR, Values: []string{"Gas"}},
			},
		}
		updated, err := store.Update(ctx, category, "q2", QuestionPatch{Conditional: rule})
		require.NoError(t, err)
		require.NotNil(t, updated.Conditional)
		assert.Equal(t, rule.Conditions, updated.Conditional.Conditions)

		// The rule round-trips through the store's own encoding.
		listed, err := store.List(ctx, category, ListOptions{})
		require.NoError(t, err)
		for _, q := range listed {
			if q.ID == "q2" {
				require.NotNil(t, q.Conditional)
				assert.Equal(t, rule.Conditions, q.Conditional.Conditions)
			}
		}

		cleared, err := store.Update(ctx, category, "q2", QuestionPatch{ClearConditional: true})
		require.NoError(t, err)
		assert.Nil(t, cleared.Conditional)
	})

	t.Run("Update Non-Existent", func(t *testing.T) {
		_, err := store.Update(ctx, category, "ghost", QuestionPatch{})
		assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
	})

	t.Run("Inactive Filtering", func(t *testing.T) {
		inactive := domain.StatusInactive
		_, err := store.Update(ctx, category, "q2", QuestionPatch{Status: &inactive})
		require.NoError(t, err)

		defaultList, err := store.List(ctx, category, ListOptions{})
		require.NoError(t, err)
		for _, q := range defaultList {
			assert.NotEqual(t, "q2", q.ID, "inactive questions excluded by default")
		}

		fullList, err := store.List(ctx, category, ListOptions{IncludeInactive: true})
		require.NoError(t, err)
		found := false
		for _, q := range fullList {
			found = found || q.ID == "q2"
		}
		assert.True(t, found, "IncludeInactive returns inactive questions")
	})

	t.Run("SoftDelete", func(t *testing.T) {
		err := store.SoftDelete(ctx, category, "q1")
		require.NoError(t, err)

		listed, err := store.List(ctx, category, ListOptions{IncludeInactive: true})
		require.NoError(t, err)
		for _, q := range listed {
			assert.NotEqual(t, "q1", q.ID, "deleted questions never listed")
		}

		// The record still exists: a second delete is not an error and
		// an update can still reach it.
		err = store.SoftDelete(ctx, category, "q1")
		assert.NoError(t, err)
	})

	t.Run("SoftDelete Non-Existent", func(t *testing.T) {
		err := store.SoftDelete(ctx, category, "ghost")
		assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
	})

	t.Run("List Unknown Category", func(t *testing.T) {
		listed, err := store.List(ctx, "no-such-category", ListOptions{})
		require.NoError(t, err, "an unknown category is an empty set, not an error")
		assert.Empty(t, listed)
	})

	t.Run("Isolation", func(t *testing.T) {
		created, err := store.Create(ctx, category, domain.Question{
			ID: "q3", Step: 2, Order: 1, Text: "original",
			Status:  domain.StatusActive,
			Options: []domain.Option{{Text: "A"}},
		})
		require.NoError(t, err)

		created.Options[0].Text = "mutated"
		listed, err := store.List(ctx, category, ListOptions{})
		require.NoError(t, err)
		for _, q := range listed {
			if q.ID == "q3" {
				assert.Equal(t, "A", q.Options[0].Text, "store must hand out isolated copies")
			}
		}
	})
}
