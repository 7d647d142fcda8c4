package flow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Fingerprint is a content-derived identity for a graph.
//
// It is the key the narrative controller uses to decide whether an incoming
// graph is "the same diagram": node/link counts plus sorted IDs, hashed.
// Crucially it is independent of object identity, so a viewport resize that
// rebuilds an identical graph does not restart the animation.
type Fingerprint string

// Fingerprint computes the graph's content identity.
func (g *Graph) Fingerprint() Fingerprint {
	nodeIDs := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	slices.Sort(nodeIDs)

	linkIDs := make([]string, 0, len(g.links))
	for _, l := range g.links {
		linkIDs = append(linkIDs, l.ID)
	}
	slices.Sort(linkIDs)

	var b strings.Builder
	fmt.Fprintf(&b, "n%d/l%d\n", len(g.nodes), len(g.links))
	b.WriteString(strings.Join(nodeIDs, ","))
	b.WriteByte('\n')
	b.WriteString(strings.Join(linkIDs, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Short returns a truncated fingerprint suitable for log lines.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}
