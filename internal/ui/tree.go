package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/abistudio/internal/render"
)

// RenderNode draws a display tree with the terminal palette. The layout
// matches render.Format.
func RenderNode(n render.Node) string {
	var sb strings.Builder
	if n.Tag == render.TagDomain {
		sb.WriteString(StyleHeader.Render("EIP-712 Domain") + "\n")
	}
	writeNode(&sb, n, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func writeNode(sb *strings.Builder, n render.Node, depth int) {
	pad := strings.Repeat("  ", depth)
	switch n.Kind {
	case render.Leaf:
		sb.WriteString(pad + leafText(n) + "\n")
	case render.None, render.Empty:
		sb.WriteString(pad + StyleMeta.Render(n.Text) + "\n")
	case render.Labeled:
		head := StyleLabel.Render(n.Label)
		if n.Type != "" {
			head += " " + StyleMeta.Render("("+n.Type+")")
		}
		if len(n.Children) == 1 && n.Children[0].Kind != render.List {
			c := n.Children[0]
			text := leafText(c)
			if c.Kind != render.Leaf {
				text = StyleMeta.Render(c.Text)
			}
			fmt.Fprintf(sb, "%s%s: %s\n", pad, head, text)
			return
		}
		sb.WriteString(pad + head + ":\n")
		for _, c := range n.Children {
			writeNode(sb, c, depth+1)
		}
	case render.List:
		for i, c := range n.Children {
			idx := StyleMeta.Render(fmt.Sprintf("[%d]", i))
			switch c.Kind {
			case render.Labeled:
				writeNode(sb, c, depth)
			case render.List:
				sb.WriteString(pad + idx + ":\n")
				writeNode(sb, c, depth+1)
			case render.Leaf:
				sb.WriteString(pad + idx + " " + leafText(c) + "\n")
			default:
				sb.WriteString(pad + idx + " " + StyleMeta.Render(c.Text) + "\n")
			}
		}
	}
}

func leafText(n render.Node) string {
	if n.Type == "address" || strings.HasPrefix(n.Type, "bytes") {
		return StyleAddress.Render(n.Text)
	}
	return StyleValue.Render(n.Text)
}
