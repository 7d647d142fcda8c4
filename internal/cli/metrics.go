package cli

import (
	"fmt"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
)

// metric is one summary figure revealed during the ready phase.
type metric struct {
	Label string
	Value string
}

// summaryMetrics derives the headline figures for a graph: total inflow,
// total loss, and retention. These are the values the narrative reveals one
// by one once the call-to-action is ready.
func summaryMetrics(g *flow.Graph) []metric {
	var inflow, loss float64
	for _, n := range g.NodesInLayer(0) {
		inflow += n.Value
	}
	for _, l := range g.Links() {
		if l.IsLoss() {
			loss += l.Value
		}
	}
	retention := 0.0
	if inflow > 0 {
		retention = (inflow - loss) / inflow * 100
	}
	return []metric{
		{Label: "Inflow", Value: fmt.Sprintf("%.0f", inflow)},
		{Label: "Loss", Value: fmt.Sprintf("%.0f", loss)},
		{Label: "Retention", Value: fmt.Sprintf("%.1f%%", retention)},
	}
}
