package doc

import (
	"fmt"
	"strconv"
	"strings"

	"scout/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns readable tree of the document. It exists solely for
// inspection during debugging and ends up in debug reports.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Document: %d blocks", len(d.Blocks))
	tw.blocks(1, d.Blocks)
	return tw.String()
}

func (tw treeWriter) blocks(depth int, blocks []Block) {
	for _, b := range blocks {
		switch b := b.(type) {
		case *Paragraph:
			tw.Node(depth, "Paragraph", "align", b.Align)
			tw.inlines(depth+1, b.Content)
		case *Heading:
			tw.Node(depth, "Heading", "level", strconv.Itoa(b.Level), "align", b.Align)
			tw.inlines(depth+1, b.Content)
		case *Blockquote:
			tw.Node(depth, "Blockquote")
			tw.blocks(depth+1, b.Blocks)
		case *List:
			kind := "BulletList"
			if b.Ordered {
				kind = "OrderedList"
			}
			tw.Line(depth, "%s: %d items", kind, len(b.Items))
			for i, item := range b.Items {
				tw.Line(depth+1, "Item[%d]", i)
				tw.blocks(depth+2, item.Blocks)
			}
		case *CodeBlock:
			tw.Node(depth, "CodeBlock", "lang", b.Language)
			tw.Text(depth+1, "text", b.Text)
		case *HorizontalRule:
			tw.Node(depth, "HorizontalRule")
		case *ColorBleed:
			tw.Node(depth, "ColorBleed", "bg", b.BackgroundColor(), "fg", b.TextColor())
			tw.blocks(depth+1, b.Blocks)
		case *ImageBleed:
			tw.Node(depth, "ImageBleed", "name", b.Name, "alt", b.Alt)
		}
	}
}

func (tw treeWriter) inlines(depth int, content []Inline) {
	for _, in := range content {
		switch in := in.(type) {
		case *Run:
			tw.Text(depth, "Run"+marksSuffix(in.Marks), in.Text)
		case *HardBreak:
			tw.Node(depth, "HardBreak")
		}
	}
}

func marksSuffix(marks []Mark) string {
	if len(marks) == 0 {
		return ""
	}
	names := make([]string, 0, len(marks))
	for _, m := range marks {
		name := m.Kind.String()
		if m.Kind == MarkKindStyle {
			if m.FontSize != nil {
				name += fmt.Sprintf(" size=%g", *m.FontSize)
			}
			if m.FontFamily != "" {
				name += " family=" + m.FontFamily
			}
		}
		names = append(names, name)
	}
	return "[" + strings.Join(names, ",") + "]"
}
