package flowgraph

import "github.com/espalier-dev/espalier/pkg/domain"

// NodeKind discriminates what a graph node represents on the canvas.
type NodeKind string

const (
	// NodeQuestion is a real question of the flow.
	NodeQuestion NodeKind = "question"
	// NodeConditional is a synthesized rule node hanging off a gated question.
	NodeConditional NodeKind = "conditional"
	// NodeAdd is a synthesized insertion point for a new question.
	NodeAdd NodeKind = "add"
)

// EdgeKind discriminates how an edge is styled.
type EdgeKind string

const (
	// EdgeSequence connects consecutive questions within a step.
	EdgeSequence EdgeKind = "sequence"
	// EdgeStep marks the boundary between the last question of one step
	// and the first question of the next.
	EdgeStep EdgeKind = "step"
	// EdgeCondition connects a condition source to its rule node, and
	// the rule node to its target.
	EdgeCondition EdgeKind = "condition"
)

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConditionalData rides on a conditional node and carries enough of the
// rule for the editor to re-open the condition dialog from a click.
type ConditionalData struct {
	TargetID      string             `json:"target_question_id"`
	GroupOperator domain.Operator    `json:"group_operator"`
	Conditions    []domain.Condition `json:"conditions"`
}

// InsertPoint is the exact position a question created from an add node
// would occupy.
type InsertPoint struct {
	Step  int `json:"step"`
	Order int `json:"order"`
}

// Node is one positioned element of the compiled graph. Exactly one of
// Question, Conditional, Insert is set, matching Kind.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Label    string   `json:"label"`
	Position Position `json:"position"`

	Question    *domain.Question `json:"question,omitempty"`
	Conditional *ConditionalData `json:"conditional,omitempty"`
	Insert      *InsertPoint     `json:"insert,omitempty"`
}

// Edge is one connection of the compiled graph. Ids are derived from
// the endpoint ids, never random, so recompiling unchanged data yields
// byte-identical edges.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Label  string   `json:"label,omitempty"`
}

// Graph is the compiled node/edge representation handed to the
// rendering layer.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id, or nil.
func (g Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Edge returns the edge with the given id, or nil.
func (g Graph) Edge(id string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i]
		}
	}
	return nil
}
