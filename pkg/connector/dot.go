package connector

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"
)

// typeColors gives each connector type a distinct edge color.
var typeColors = map[Type]string{
	Stairs:    "darkgreen",
	Elevator:  "steelblue",
	Escalator: "darkorange",
}

// DOT renders the floor connectivity of connectors as a Graphviz graph.
// Floors become nodes; each connector becomes one undirected edge labelled
// with its id. If types is non-empty, only those connector types are drawn.
func DOT(connectors []Connector, types ...Type) string {
	var floors []string
	var edges []string
	for _, c := range connectors {
		if len(types) > 0 && !slices.Contains(types, c.Type) {
			continue
		}
		for _, f := range []string{c.FromFloor, c.ToFloor} {
			if f != "" && !slices.Contains(floors, f) {
				floors = append(floors, f)
			}
		}
		color := typeColors[c.Type]
		if color == "" {
			color = "black"
		}
		edges = append(edges, fmt.Sprintf("  %q -- %q [label=%q, color=%s];", c.FromFloor, c.ToFloor, c.ID, color))
	}
	slices.Sort(floors)

	var b strings.Builder
	b.WriteString("graph floors {\n")
	b.WriteString("  node [shape=box, style=rounded];\n")
	for _, f := range floors {
		fmt.Fprintf(&b, "  %q;\n", f)
	}
	for _, e := range edges {
		b.WriteString(e)
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
