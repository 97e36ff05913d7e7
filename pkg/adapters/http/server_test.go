package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/espalier-dev/espalier/pkg/adapters/http"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flowgraph"
	"github.com/espalier-dev/espalier/pkg/ports"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.Seed("boilers", []domain.Question{
		{
			ID: "q1", Step: 1, Order: 1, Text: "Fuel?",
			MultipleChoice: true, Status: domain.StatusActive,
			Options: []domain.Option{{Text: "Gas"}, {Text: "Electric"}},
		},
		{
			ID: "q2", Step: 1, Order: 2, Text: "Boiler type?",
			MultipleChoice: true, Status: domain.StatusActive,
			Options: []domain.Option{{Text: "Combi"}},
		},
	})

	srv := httptest.NewServer(httpAdapter.NewHandler(store))
	t.Cleanup(srv.Close)
	return srv, store
}

func getJSON(t *testing.T, url string, target any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestServer_ListQuestions(t *testing.T) {
	srv, _ := newTestServer(t)

	var questions []domain.Question
	getJSON(t, srv.URL+"/categories/boilers/questions", &questions)
	require.Len(t, questions, 2)
}

func TestServer_Graph(t *testing.T) {
	srv, _ := newTestServer(t)

	var g flowgraph.Graph
	getJSON(t, srv.URL+"/categories/boilers/graph", &g)

	// 2 questions + end-of-step add + end-of-flow add.
	assert.Len(t, g.Nodes, 4)
	assert.NotNil(t, g.Node("q1"))
	assert.NotNil(t, g.Edge("e-q1-q2"))
}

func TestServer_ConditionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := `{
		"group_operator": "AND",
		"conditions": [
			{"source_question_id": "q1", "operator": "OR", "values": ["Gas"]}
		]
	}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/categories/boilers/questions/q2/condition", bytes.NewBufferString(payload))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var g flowgraph.Graph
	getJSON(t, srv.URL+"/categories/boilers/graph", &g)
	assert.NotNil(t, g.Node("cond-q2"))

	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/categories/boilers/questions/q2/condition", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestServer_ConditionValidationRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	// Empty value set: rejected with 422 before anything persists.
	payload := `{
		"group_operator": "AND",
		"conditions": [{"source_question_id": "q1", "operator": "OR", "values": []}]
	}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/categories/boilers/questions/q2/condition", bytes.NewBufferString(payload))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_CreateAndDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := `{
		"step": 1, "order": 3,
		"question_text": "Radiators?",
		"is_multiple_choice": true,
		"answer_options": ["1-5", {"text": "6+", "cost": 10}]
	}`
	resp, err := http.Post(srv.URL+"/categories/boilers/questions", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Question
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "1-5", created.Options[0].Text)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/categories/boilers/questions/"+created.ID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)
}

func TestServer_DeleteUnknownIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/categories/boilers/questions/ghost", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Visibility(t *testing.T) {
	srv, store := newTestServer(t)

	// Gate q2 on q1 = Gas directly in the store.
	rule := &domain.ConditionalDisplay{
		GroupOperator: domain.OperatorAND,
		Conditions: []domain.Condition{
			{SourceID: "q1", Operator: domain.OperatorOR, Values: []string{"Gas"}},
		},
	}
	_, err := store.Update(t.Context(), "boilers", "q2", ports.QuestionPatch{Conditional: rule})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/categories/boilers/visibility", "application/json",
		bytes.NewBufferString(`{"answers": {"q1": "Gas"}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Visible map[string]bool `json:"visible"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Visible["q1"])
	assert.True(t, out.Visible["q2"])

	resp2, err := http.Post(srv.URL+"/categories/boilers/visibility", "application/json",
		bytes.NewBufferString(`{"answers": {}}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&out))
	assert.False(t, out.Visible["q2"], "unanswered source hides the gated question")
}
