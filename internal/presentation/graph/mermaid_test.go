package graph

import (
	"strings"
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flowgraph"
)

func flowFixture(t *testing.T) flowgraph.Graph {
	t.Helper()
	questions := []domain.Question{
		{ID: "q1", Step: 1, Order: 1, Text: "Fuel?", MultipleChoice: true,
			Options: []domain.Option{{Text: "Gas"}}, Status: domain.StatusActive},
		{ID: "q2", Step: 2, Order: 1, Text: "Boiler type?", Status: domain.StatusActive,
			Conditional: &domain.ConditionalDisplay{
				GroupOperator: domain.OperatorAND,
				Conditions: []domain.Condition{
					{SourceID: "q1", Operator: domain.OperatorOR, Values: []string{"Gas"}},
				},
			}},
	}
	return flowgraph.Compile(questions)
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := GenerateMermaid(flowFixture(t), nil)

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Fatalf("expected flowchart header, got %q", out)
	}
	if !strings.Contains(out, `q1[/"Fuel?"/]`) {
		t.Errorf("expected question parallelogram, got:\n%s", out)
	}
	if !strings.Contains(out, `cond_q2{`) {
		t.Errorf("expected conditional diamond, got:\n%s", out)
	}
	if !strings.Contains(out, `add_2_2([`) {
		t.Errorf("expected add stadium, got:\n%s", out)
	}
}

func TestGenerateMermaid_EdgeStyles(t *testing.T) {
	out := GenerateMermaid(flowFixture(t), nil)

	// Step boundary renders dashed with its label.
	if !strings.Contains(out, `q1 -. "Step 2" .-> q2`) {
		t.Errorf("expected dashed step edge, got:\n%s", out)
	}
	// Condition source feeds the rule node.
	if !strings.Contains(out, "q1 ") || !strings.Contains(out, " cond_q2") {
		t.Errorf("expected condition edges, got:\n%s", out)
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := GenerateMermaid(flowFixture(t), &GraphOverlay{VisibleNodes: []string{"q1"}})

	if !strings.Contains(out, "class q1 visible;") {
		t.Errorf("expected q1 styled visible, got:\n%s", out)
	}
	if !strings.Contains(out, "class q2 hidden;") {
		t.Errorf("expected q2 styled hidden, got:\n%s", out)
	}
	// Synthesized nodes are never overlay-styled.
	if strings.Contains(out, "class cond_q2") || strings.Contains(out, "class add_") {
		t.Errorf("overlay must only style question nodes, got:\n%s", out)
	}
}

func TestGenerateMermaid_EscapesQuotes(t *testing.T) {
	g := flowgraph.Compile([]domain.Question{
		{ID: "q1", Step: 1, Order: 1, Text: `Do you have a "combi" boiler?`, Status: domain.StatusActive},
	})
	out := GenerateMermaid(g, nil)
	if strings.Contains(out, `"combi"`) {
		t.Errorf("double quotes must be escaped for Mermaid labels, got:\n%s", out)
	}
}
