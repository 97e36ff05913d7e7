// Package espalier manages conditional intake-form flows: ordered
// multi-step question sets where a question can be gated on the
// answers given to earlier questions.
//
// The library has three layers:
//
//   - pkg/domain holds the question and condition model, including the
//     normalizer that upgrades legacy single-condition rules to the
//     canonical multi-condition shape.
//   - pkg/visibility evaluates whether a question should show for a
//     given answer set; pkg/flowgraph compiles the questions into a
//     deterministic node/edge graph for the editor canvas.
//   - pkg/editor orchestrates mutations (add, edit, delete, gate)
//     against a pkg/ports.QuestionStore; adapters for memory, YAML
//     files and Redis live under pkg/adapters.
//
// The Workbench in this package ties the layers together for the
// common cases:
//
//	wb, err := espalier.New("./data")
//	if err != nil {
//		log.Fatal(err)
//	}
//	visible, err := wb.Visible(ctx, "boilers", domain.Answers{
//		"fuel-type": "Gas",
//	})
//
// Consumers needing finer control can use the layer packages directly;
// the Workbench adds no behavior of its own.
package espalier
