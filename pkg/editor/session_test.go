package editor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/editor"
	"github.com/espalier-dev/espalier/pkg/flowgraph"
	"github.com/espalier-dev/espalier/pkg/ports"
)

const category = "boilers"

func seededSession(t *testing.T) *editor.Session {
	t.Helper()
	store := memory.NewStore()
	store.Seed(category, []domain.Question{
		{
			ID: "q1", Step: 1, Order: 1, Text: "Fuel?",
			MultipleChoice: true, Status: domain.StatusActive,
			Options: []domain.Option{{Text: "Gas"}, {Text: "Electric"}},
		},
		{
			ID: "q2", Step: 1, Order: 2, Text: "Boiler type?",
			MultipleChoice: true, Status: domain.StatusActive,
			Options: []domain.Option{{Text: "Combi"}, {Text: "Regular"}},
		},
		{
			ID: "q3", Step: 2, Order: 1, Text: "Notes",
			MultipleChoice: false, Status: domain.StatusActive,
		},
	})

	next := 0
	session := editor.NewSession(store, category, editor.WithIDGenerator(func() string {
		next++
		return fmt.Sprintf("new-%d", next)
	}))
	require.NoError(t, session.Load(context.Background()))
	return session
}

func TestSession_RequiresLoad(t *testing.T) {
	session := editor.NewSession(memory.NewStore(), category)

	_, err := session.Graph()
	assert.ErrorIs(t, err, domain.ErrNotLoaded)

	_, err = session.AddQuestion(context.Background(), flowgraph.InsertPoint{Step: 1, Order: 1}, editor.QuestionDraft{})
	assert.ErrorIs(t, err, domain.ErrNotLoaded)
}

func TestSession_AddQuestion(t *testing.T) {
	session := seededSession(t)
	ctx := context.Background()

	created, err := session.AddQuestion(ctx, flowgraph.InsertPoint{Step: 2, Order: 2}, editor.QuestionDraft{
		Text:           "Radiator count?",
		MultipleChoice: true,
		Options:        []domain.Option{{Text: "1-5"}, {Text: "6+"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, domain.StatusActive, created.Status, "status defaults to active")

	g, err := session.Graph()
	require.NoError(t, err)
	assert.NotNil(t, g.Node("new-1"))

	// The occupied position from a stale add node is rejected.
	_, err = session.AddQuestion(ctx, flowgraph.InsertPoint{Step: 1, Order: 1}, editor.QuestionDraft{Text: "dup"})
	assert.Error(t, err)
}

func TestSession_EditAndDelete(t *testing.T) {
	session := seededSession(t)
	ctx := context.Background()

	text := "Which fuel?"
	updated, err := session.EditQuestion(ctx, "q1", ports.QuestionPatch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "Which fuel?", updated.Text)

	require.NoError(t, session.DeleteQuestion(ctx, "q2"))
	g, err := session.Graph()
	require.NoError(t, err)
	assert.Nil(t, g.Node("q2"), "deleted question leaves the graph")

	// Deleted questions stop being condition sources.
	candidates, err := session.CandidateSources("q3")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "q1", candidates[0].ID)

	assert.ErrorIs(t, session.DeleteQuestion(ctx, "ghost"), domain.ErrQuestionNotFound)
}

func TestSession_CandidateSources(t *testing.T) {
	session := seededSession(t)

	// q3 sits after q1 and q2; both are multiple choice, so both are
	// eligible. q3 itself (free text) can never be a source.
	candidates, err := session.CandidateSources("q3")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "q1", candidates[0].ID)
	assert.Equal(t, "q2", candidates[1].ID)

	// The first question has nothing before it.
	candidates, err = session.CandidateSources("q1")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSession_SetCondition(t *testing.T) {
	session := seededSession(t)
	ctx := context.Background()

	updated, err := session.SetCondition(ctx, "q2", editor.DialogResult{
		GroupOperator: domain.OperatorAND,
		Rows: []editor.ConditionRow{
			{SourceID: "q1", Operator: domain.OperatorOR, Values: []string{"Gas"}},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Conditional)

	g, err := session.Graph()
	require.NoError(t, err)
	require.NotNil(t, g.Node("cond-q2"))
	require.NotNil(t, g.Edge("e-q1-cond-q2"))
	require.NotNil(t, g.Edge("e-cond-q2-q2"))

	require.NoError(t, session.RemoveCondition(ctx, "q2"))
	g, err = session.Graph()
	require.NoError(t, err)
	assert.Nil(t, g.Node("cond-q2"))
}

func TestSession_DialogValidationGate(t *testing.T) {
	session := seededSession(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		result editor.DialogResult
		row    int
	}{
		{"NoRows", editor.DialogResult{GroupOperator: domain.OperatorAND}, 0},
		{"MissingSource", editor.DialogResult{
			Rows: []editor.ConditionRow{{Values: []string{"Gas"}}},
		}, 0},
		{"EmptyValues", editor.DialogResult{
			Rows: []editor.ConditionRow{
				{SourceID: "q1", Values: []string{"Gas"}},
				{SourceID: "q1", Values: nil},
			},
		}, 1},
		{"LaterSource", editor.DialogResult{
			Rows: []editor.ConditionRow{{SourceID: "q3", Values: []string{"x"}}},
		}, 0},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := session.SetCondition(ctx, "q2", tt.result)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.row, verr.Row, "error should name the offending row")

			// Nothing reached the store: the question is still unconditional.
			for _, q := range session.Questions() {
				if q.ID == "q2" {
					assert.True(t, q.Conditional.Empty())
				}
			}
		})
	}
}

func TestSession_ConnectDrag(t *testing.T) {
	session := seededSession(t)

	seed, err := session.ConnectDrag("q1", "q2")
	require.NoError(t, err)
	assert.Equal(t, "q2", seed.TargetID)
	require.Len(t, seed.Rows, 1)
	assert.Equal(t, "q1", seed.Rows[0].SourceID)
	require.Len(t, seed.Candidates, 1)

	// Dragging backwards is refused outright.
	_, err = session.ConnectDrag("q2", "q1")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	// Dragging onto an already-gated target appends a row.
	_, err = session.SetCondition(context.Background(), "q3", editor.DialogResult{
		GroupOperator: domain.OperatorOR,
		Rows: []editor.ConditionRow{
			{SourceID: "q1", Operator: domain.OperatorOR, Values: []string{"Gas"}},
		},
	})
	require.NoError(t, err)

	seed, err = session.ConnectDrag("q2", "q3")
	require.NoError(t, err)
	assert.Equal(t, domain.OperatorOR, seed.GroupOperator)
	require.Len(t, seed.Rows, 2)
	assert.Equal(t, "q1", seed.Rows[0].SourceID)
	assert.Equal(t, "q2", seed.Rows[1].SourceID)
}

func TestSession_ShowInactiveRecompilesLocally(t *testing.T) {
	store := memory.NewStore()
	store.Seed(category, []domain.Question{
		{ID: "q1", Step: 1, Order: 1, MultipleChoice: true, Status: domain.StatusActive, Options: []domain.Option{{Text: "A"}}},
		{ID: "q2", Step: 1, Order: 2, MultipleChoice: true, Status: domain.StatusInactive, Options: []domain.Option{{Text: "B"}}},
	})
	session := editor.NewSession(store, category)
	require.NoError(t, session.Load(context.Background()))

	g, err := session.Graph()
	require.NoError(t, err)
	assert.Nil(t, g.Node("q2"))

	session.SetShowInactive(true)
	g, err = session.Graph()
	require.NoError(t, err)
	assert.NotNil(t, g.Node("q2"))

	// Ids of unaffected nodes did not churn.
	assert.NotNil(t, g.Node("q1"))
}

// failingStore wraps a working store and fails selected operations, to
// verify that a persistence failure leaves the session retryable.
type failingStore struct {
	ports.QuestionStore
	failUpdate bool
}

func (f *failingStore) Update(ctx context.Context, categoryID, id string, patch ports.QuestionPatch) (domain.Question, error) {
	if f.failUpdate {
		return domain.Question{}, errors.New("store unavailable")
	}
	return f.QuestionStore.Update(ctx, categoryID, id, patch)
}

func TestSession_PersistenceFailureLeavesStateUnchanged(t *testing.T) {
	inner := memory.NewStore()
	inner.Seed(category, []domain.Question{
		{ID: "q1", Step: 1, Order: 1, Text: "original", MultipleChoice: true, Status: domain.StatusActive, Options: []domain.Option{{Text: "A"}}},
	})
	store := &failingStore{QuestionStore: inner, failUpdate: true}
	session := editor.NewSession(store, category)
	ctx := context.Background()
	require.NoError(t, session.Load(ctx))

	text := "changed"
	_, err := session.EditQuestion(ctx, "q1", ports.QuestionPatch{Text: &text})
	require.Error(t, err)

	// Local state is untouched and the session is idle again, so the
	// same operation can simply be retried.
	assert.Equal(t, "original", session.Questions()[0].Text)
	assert.False(t, session.State().Busy)

	store.failUpdate = false
	updated, err := session.EditQuestion(ctx, "q1", ports.QuestionPatch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Text)
}
