package render

import (
	"fmt"
	"strings"
)

// Format prints a display tree as indented plain text.
func Format(n Node) string {
	var b strings.Builder
	write(&b, n, 0)
	return strings.TrimRight(b.String(), "\n")
}

func write(b *strings.Builder, n Node, depth int) {
	pad := strings.Repeat("  ", depth)
	switch n.Kind {
	case Leaf, None, Empty:
		fmt.Fprintf(b, "%s%s\n", pad, n.Text)
	case Labeled:
		head := n.Label
		if n.Type != "" {
			head += " (" + n.Type + ")"
		}
		if len(n.Children) == 1 && n.Children[0].Kind != List {
			fmt.Fprintf(b, "%s%s: %s\n", pad, head, n.Children[0].Text)
			return
		}
		fmt.Fprintf(b, "%s%s:\n", pad, head)
		for _, c := range n.Children {
			write(b, c, depth+1)
		}
	case List:
		for i, c := range n.Children {
			if c.Kind == Labeled {
				write(b, c, depth)
				continue
			}
			if c.Kind == List {
				fmt.Fprintf(b, "%s[%d]:\n", pad, i)
				write(b, c, depth+1)
				continue
			}
			fmt.Fprintf(b, "%s[%d] %s\n", pad, i, c.Text)
		}
	}
}
