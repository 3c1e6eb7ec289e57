package cssast

import (
	"strings"
)

// ToCSS renders nodes as formatted CSS with two-space indentation.
// The output is trimmed.
func ToCSS(nodes []Node) string {
	var b strings.Builder
	printNodes(&b, nodes, 0)
	return strings.TrimSpace(b.String())
}

// String renders the root as CSS
func (r *Root) String() string {
	if r == nil {
		return ""
	}
	return ToCSS(r.Nodes)
}

func printNodes(b *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, n := range nodes {
		switch v := n.(type) {
		case *Declaration:
			b.WriteString(indent)
			b.WriteString(v.Property)
			if v.Value != "" {
				b.WriteString(": ")
				b.WriteString(v.Value)
			}
			if v.Important {
				b.WriteString(" !important")
			}
			b.WriteString(";\n")

		case *Comment:
			b.WriteString(indent)
			b.WriteString("/*")
			b.WriteString(v.Text)
			b.WriteString("*/\n")

		case *Rule:
			b.WriteString(indent)
			b.WriteString(v.Selector)
			b.WriteString(" {\n")
			printNodes(b, v.Nodes, depth+1)
			b.WriteString(indent)
			b.WriteString("}\n")

		case *AtRule:
			b.WriteString(indent)
			b.WriteString("@")
			b.WriteString(v.Name)
			if v.Params != "" {
				b.WriteString(" ")
				b.WriteString(v.Params)
			}
			if !v.Block {
				b.WriteString(";\n")
				continue
			}
			b.WriteString(" {\n")
			printNodes(b, v.Nodes, depth+1)
			b.WriteString(indent)
			b.WriteString("}\n")
		}
	}
}
