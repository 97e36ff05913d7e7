package graph

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/flowgraph"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
// Visible nodes are the questions a given answer set would show; the
// rest render greyed out.
type GraphOverlay struct {
	VisibleNodes []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a
// compiled flow graph. It applies semantic styling:
// - Question: [/Parallelogram/]
// - Conditional: {Diamond}
// - Add placeholder: ([Stadium])
// Step-transition edges render dashed, condition edges labeled.
func GenerateMermaid(g flowgraph.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Kind {
		case flowgraph.NodeQuestion:
			opener, closer = "[/", "/]"
		case flowgraph.NodeConditional:
			opener, closer = "{", "}"
		case flowgraph.NodeAdd:
			opener, closer = "([", "])"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(nodeLabel(node)), closer))
	}

	for _, edge := range g.Edges {
		safeFrom := sanitizeMermaidID(edge.Source)
		safeTo := sanitizeMermaidID(edge.Target)

		arrow := "-->"
		switch {
		case edge.Kind == flowgraph.EdgeStep:
			arrow = "-.->"
			if edge.Label != "" {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeMermaidLabel(edge.Label))
			}
		case edge.Label != "":
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeMermaidLabel(edge.Label))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visible fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef hidden fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:3 3,color:#000;\n")

		visibleSet := make(map[string]bool, len(overlay.VisibleNodes))
		for _, id := range overlay.VisibleNodes {
			visibleSet[id] = true
		}
		for _, node := range g.Nodes {
			if node.Kind != flowgraph.NodeQuestion {
				continue
			}
			class := "hidden"
			if visibleSet[node.ID] {
				class = "visible"
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(node.ID), class))
		}
	}

	return sb.String()
}

func nodeLabel(node flowgraph.Node) string {
	if node.Label != "" {
		return node.Label
	}
	return node.ID
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
