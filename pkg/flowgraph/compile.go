// Package flowgraph compiles a category's flat, ordered question list
// into the positioned node/edge graph the visual editor renders.
// Compilation is pure and deterministic: equal inputs always produce
// identical ids and positions, so the rendering layer can diff safely
// and toggling unrelated state never churns unaffected nodes.
package flowgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Layout constants. The flow is a single centered column with a running
// y cursor; conditional nodes hang laterally off their target.
const (
	centerX           = 400.0
	questionSpacing   = 140.0
	addSpacing        = 70.0
	conditionalOffset = 320.0
)

// Option configures a compilation.
type Option func(*settings)

type settings struct {
	includeInactive bool
}

// WithInactive includes status=inactive questions in the compiled
// graph. The editor's default hides them.
func WithInactive(include bool) Option {
	return func(s *settings) {
		s.includeInactive = include
	}
}

// Compile maps the question set onto a positioned graph. Deleted
// questions never appear; inactive ones only with WithInactive(true).
func Compile(questions []domain.Question, opts ...Option) Graph {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	visible := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.Deleted {
			continue
		}
		if q.Status == domain.StatusInactive && !cfg.includeInactive {
			continue
		}
		visible = append(visible, q.Clone())
	}
	domain.SortQuestions(visible)

	steps := groupSteps(visible)

	var g Graph
	y := 0.0
	maxStep := 0

	for _, step := range steps {
		maxStep = step.number

		for i := range step.questions {
			q := &step.questions[i]
			g.Nodes = append(g.Nodes, Node{
				ID:       q.ID,
				Kind:     NodeQuestion,
				Label:    q.Text,
				Position: Position{X: centerX, Y: y},
				Question: q,
			})
			y += questionSpacing

			if i > 0 {
				prev := step.questions[i-1]
				g.Edges = append(g.Edges, Edge{
					ID:     edgeID(prev.ID, q.ID),
					Source: prev.ID,
					Target: q.ID,
					Kind:   EdgeSequence,
				})
			}
		}

		// Insertion point closing out the step.
		lastOrder := step.questions[len(step.questions)-1].Order
		g.Nodes = append(g.Nodes, addNode(step.number, lastOrder+1, y))
		y += addSpacing
	}

	// Step transition edges run between the last question of one step
	// and the first of the next.
	for i := 1; i < len(steps); i++ {
		from := steps[i-1].questions[len(steps[i-1].questions)-1]
		to := steps[i].questions[0]
		g.Edges = append(g.Edges, Edge{
			ID:     edgeID(from.ID, to.ID),
			Source: from.ID,
			Target: to.ID,
			Kind:   EdgeStep,
			Label:  fmt.Sprintf("Step %d", steps[i].number),
		})
	}

	// One more insertion point at the very end, opening a new step.
	g.Nodes = append(g.Nodes, addNode(maxStep+1, 1, y))

	g.appendConditionals(visible)
	return g
}

// appendConditionals synthesizes one rule node per gated question, plus
// one inbound edge per condition source and one edge to the target.
// Sources that are absent from the compiled graph (deleted, filtered,
// or dangling after an edit) get no inbound edge; the rule node still
// renders so the operator can open and fix it.
func (g *Graph) appendConditionals(visible []domain.Question) {
	present := make(map[string]bool, len(visible))
	for _, q := range visible {
		present[q.ID] = true
	}

	for _, q := range visible {
		if q.Conditional.Empty() {
			continue
		}

		target := g.Node(q.ID)
		condID := "cond-" + q.ID
		g.Nodes = append(g.Nodes, Node{
			ID:       condID,
			Kind:     NodeConditional,
			Label:    conditionalLabel(q.Conditional),
			Position: Position{X: centerX + conditionalOffset, Y: target.Position.Y},
			Conditional: &ConditionalData{
				TargetID:      q.ID,
				GroupOperator: q.Conditional.GroupOperator,
				Conditions:    q.Conditional.Clone().Conditions,
			},
		})

		seen := make(map[string]bool)
		for _, c := range q.Conditional.Conditions {
			if !present[c.SourceID] || seen[c.SourceID] {
				continue
			}
			seen[c.SourceID] = true
			g.Edges = append(g.Edges, Edge{
				ID:     edgeID(c.SourceID, condID),
				Source: c.SourceID,
				Target: condID,
				Kind:   EdgeCondition,
			})
		}

		g.Edges = append(g.Edges, Edge{
			ID:     edgeID(condID, q.ID),
			Source: condID,
			Target: q.ID,
			Kind:   EdgeCondition,
		})
	}
}

type stepGroup struct {
	number    int
	questions []domain.Question
}

func groupSteps(questions []domain.Question) []stepGroup {
	byStep := make(map[int][]domain.Question)
	for _, q := range questions {
		byStep[q.Step] = append(byStep[q.Step], q)
	}

	numbers := make([]int, 0, len(byStep))
	for n := range byStep {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	steps := make([]stepGroup, 0, len(numbers))
	for _, n := range numbers {
		steps = append(steps, stepGroup{number: n, questions: byStep[n]})
	}
	return steps
}

func addNode(step, order int, y float64) Node {
	return Node{
		ID:       fmt.Sprintf("add-%d-%d", step, order),
		Kind:     NodeAdd,
		Label:    "+",
		Position: Position{X: centerX, Y: y},
		Insert:   &InsertPoint{Step: step, Order: order},
	}
}

func edgeID(source, target string) string {
	return "e-" + source + "-" + target
}

func conditionalLabel(cd *domain.ConditionalDisplay) string {
	parts := make([]string, 0, len(cd.Conditions))
	for _, c := range cd.Conditions {
		parts = append(parts, fmt.Sprintf("%s %s [%s]", c.SourceID, c.Operator, strings.Join(c.Values, ", ")))
	}
	return strings.Join(parts, fmt.Sprintf(" %s ", cd.GroupOperator))
}
