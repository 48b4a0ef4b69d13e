package graph

import (
	"fmt"
	"strings"
)

// Dump renders the graph as a deterministic textual listing, one node per
// line in creation order. The output is stable for a fixed input model and
// is what the CLI prints and the golden tests compare against.
func (g *Graph) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph %q {\n", g.name)
	for _, n := range g.nodes {
		b.WriteString("  ")
		b.WriteString(formatNode(n))
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

func formatNode(n *Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%%%s = %s", n.name, n.kind)

	if len(n.inputs) > 0 {
		b.WriteByte('(')
		for i, in := range n.inputs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatValue(in))
		}
		b.WriteByte(')')
	}

	switch n.kind {
	case KindFlatten, KindBroadcast:
		fmt.Fprintf(&b, " axis=%d", n.axis)
	case KindTranspose:
		fmt.Fprintf(&b, " perm=%v", n.perm)
	case KindSlice:
		fmt.Fprintf(&b, " axis=%d start=%v", n.axis, n.start)
	case KindLRN:
		fmt.Fprintf(&b, " size=%d alpha=%g beta=%g k=%g", n.size, n.alpha, n.beta, n.k)
	}

	for _, ty := range n.results {
		fmt.Fprintf(&b, " %s%s", ty.Dims, ty.DType)
	}
	return b.String()
}

func formatValue(nv NodeValue) string {
	if nv.Res == 0 {
		return "%" + nv.Node.name
	}
	return fmt.Sprintf("%%%s:%d", nv.Node.name, nv.Res)
}
