package content

import (
	"testing"

	"scout/doc"
)

func runs(t *testing.T, b doc.Block) []*doc.Run {
	t.Helper()
	var content []doc.Inline
	switch b := b.(type) {
	case *doc.Paragraph:
		content = b.Content
	case *doc.Heading:
		content = b.Content
	default:
		t.Fatalf("block %T has no inline content", b)
	}
	out := make([]*doc.Run, 0, len(content))
	for _, in := range content {
		r, ok := in.(*doc.Run)
		if !ok {
			t.Fatalf("inline %T is not a run", in)
		}
		out = append(out, r)
	}
	return out
}

func TestFromMarkdown_EmphasisRuns(t *testing.T) {
	d := FromMarkdown([]byte("**bold** and *em*"))
	if len(d.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(d.Blocks))
	}
	rs := runs(t, d.Blocks[0])
	if len(rs) != 3 {
		t.Fatalf("runs = %d, want 3\n%s", len(rs), d)
	}

	tests := []struct {
		text   string
		bold   bool
		italic bool
	}{
		{"bold", true, false},
		{" and ", false, false},
		{"em", false, true},
	}
	for i, tt := range tests {
		r := rs[i]
		if r.Text != tt.text || r.Has(doc.MarkKindBold) != tt.bold || r.Has(doc.MarkKindItalic) != tt.italic || len(r.Marks) != btoi(tt.bold)+btoi(tt.italic) {
			t.Errorf("run[%d] = %q %v, want %q bold=%v italic=%v", i, r.Text, r.Marks, tt.text, tt.bold, tt.italic)
		}
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestFromMarkdown_Empty(t *testing.T) {
	for _, src := range []string{"", "   \n\n  ", "<!-- comment -->"} {
		d := FromMarkdown([]byte(src))
		if len(d.Blocks) != 1 {
			t.Fatalf("FromMarkdown(%q) blocks = %d, want 1", src, len(d.Blocks))
		}
		if p, ok := d.Blocks[0].(*doc.Paragraph); !ok || len(p.Content) != 0 {
			t.Errorf("FromMarkdown(%q) = %s, want single empty paragraph", src, d)
		}
	}
}

func TestFromMarkdown_Blocks(t *testing.T) {
	src := "# Title\n\nFirst line\nsecond line\n\n> quoted\n\n```go\nx := 1\n```\n\n---\n\nuse `fmt` and [link](http://example.com) \\*not\\* &amp; more\n"
	d := FromMarkdown([]byte(src))
	if len(d.Blocks) != 5 {
		t.Fatalf("blocks = %d, want 5\n%s", len(d.Blocks), d)
	}

	h, ok := d.Blocks[0].(*doc.Heading)
	if !ok || h.Level != 1 || doc.PlainText(h.Content) != "Title" {
		t.Errorf("block 0 = %#v, want level 1 heading", d.Blocks[0])
	}

	if got := doc.PlainText(d.Blocks[1].(*doc.Paragraph).Content); got != "First line second line" {
		t.Errorf("soft break paragraph = %q", got)
	}

	bq, ok := d.Blocks[2].(*doc.Blockquote)
	if !ok || len(bq.Blocks) != 1 || doc.PlainText(bq.Blocks[0].(*doc.Paragraph).Content) != "quoted" {
		t.Errorf("block 2 = %s, want blockquote", d)
	}

	cb, ok := d.Blocks[3].(*doc.CodeBlock)
	if !ok || cb.Language != "go" || cb.Text != "x := 1\n" {
		t.Errorf("block 3 = %#v, want go code block", d.Blocks[3])
	}

	rs := runs(t, d.Blocks[4])
	if len(rs) < 3 || rs[1].Text != "fmt" || !rs[1].Has(doc.MarkKindCode) {
		t.Fatalf("inline code runs = %s", d)
	}
	if got := doc.PlainText(d.Blocks[4].(*doc.Paragraph).Content); got != "use fmt and link *not* & more" {
		t.Errorf("last paragraph text = %q", got)
	}
}

func TestFromMarkdown_Lists(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		ordered bool
		items   []string
	}{
		{"tight bullet", "- a\n- b\n", false, []string{"a", "b"}},
		{"loose bullet", "- a\n\n- b\n", false, []string{"a", "b"}},
		{"ordered", "1. one\n2. two\n3. three\n", true, []string{"one", "two", "three"}},
		{"empty item", "- foo\n-\n- bar\n", false, []string{"foo", "", "bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromMarkdown([]byte(tt.src))
			if len(d.Blocks) != 1 {
				t.Fatalf("blocks = %d, want 1\n%s", len(d.Blocks), d)
			}
			l, ok := d.Blocks[0].(*doc.List)
			if !ok {
				t.Fatalf("block = %T, want *doc.List", d.Blocks[0])
			}
			if l.Ordered != tt.ordered {
				t.Errorf("ordered = %v, want %v", l.Ordered, tt.ordered)
			}
			if len(l.Items) != len(tt.items) {
				t.Fatalf("items = %d, want %d\n%s", len(l.Items), len(tt.items), d)
			}
			for i, want := range tt.items {
				item := l.Items[i]
				if len(item.Blocks) != 1 {
					t.Fatalf("item %d blocks = %d, want 1", i, len(item.Blocks))
				}
				p, ok := item.Blocks[0].(*doc.Paragraph)
				if !ok || doc.PlainText(p.Content) != want {
					t.Errorf("item %d = %#v, want paragraph %q", i, item.Blocks[0], want)
				}
			}
		})
	}
}

func TestFromMarkdown_NestedList(t *testing.T) {
	d := FromMarkdown([]byte("- outer\n  - inner\n- next\n"))
	if len(d.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1\n%s", len(d.Blocks), d)
	}
	l := d.Blocks[0].(*doc.List)
	if len(l.Items) != 2 {
		t.Fatalf("outer items = %d, want 2\n%s", len(l.Items), d)
	}
	first := l.Items[0]
	if len(first.Blocks) != 2 {
		t.Fatalf("first item blocks = %d, want 2\n%s", len(first.Blocks), d)
	}
	if got := doc.PlainText(first.Blocks[0].(*doc.Paragraph).Content); got != "outer" {
		t.Errorf("first item text = %q, want outer", got)
	}
	inner, ok := first.Blocks[1].(*doc.List)
	if !ok || len(inner.Items) != 1 {
		t.Fatalf("nested list = %#v", first.Blocks[1])
	}
}

// Events below are built by hand to pin down builder behavior independently
// of the parser.

func feed(events ...Event) *doc.Document {
	b := &treeBuilder{}
	for _, e := range events {
		b.handle(e)
	}
	return (&doc.Document{Blocks: b.root}).Normalize()
}

func start(tag Tag) Event { return Event{Kind: EventStart, Tag: tag} }
func end(tag Tag) Event   { return Event{Kind: EventEnd, Tag: tag} }
func txt(s string) Event  { return Event{Kind: EventText, Text: s} }

func TestTreeBuilder_Breaks(t *testing.T) {
	d := feed(
		start(TagParagraph), txt("one"), Event{Kind: EventHardBreak}, start(TagStrong), txt("two"), end(TagStrong), Event{Kind: EventSoftBreak}, end(TagParagraph),
	)
	rs := runs(t, d.Blocks[0])
	if len(rs) != 2 || rs[0].Text != "one " || rs[1].Text != "two " {
		t.Errorf("runs = %s", d)
	}

	// break before any text is dropped
	d = feed(start(TagParagraph), Event{Kind: EventSoftBreak}, txt("x"), end(TagParagraph))
	if got := doc.PlainText(d.Blocks[0].(*doc.Paragraph).Content); got != "x" {
		t.Errorf("leading break text = %q, want x", got)
	}
}

func TestTreeBuilder_Routing(t *testing.T) {
	d := feed(
		start(TagParagraph), end(TagParagraph), // empty top level paragraph dropped
		start(TagBlockQuote), start(TagParagraph), end(TagParagraph), end(TagBlockQuote), // kept inside quote
		start(TagBlockQuote), end(TagBlockQuote), // empty quote dropped
		start(TagList), end(TagList), // empty list dropped
		Event{Kind: EventStart, Tag: TagHeading, Level: 9}, txt("h"), Event{Kind: EventCode, Text: "c"}, end(TagHeading),
		Event{Kind: EventStart, Tag: TagCodeBlock, Language: "sh"}, txt("ls\n"), Event{Kind: EventCode, Text: "pwd\n"}, end(TagCodeBlock),
		txt("stray"),
	)
	if len(d.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3\n%s", len(d.Blocks), d)
	}
	bq := d.Blocks[0].(*doc.Blockquote)
	if len(bq.Blocks) != 1 {
		t.Errorf("blockquote blocks = %d, want 1", len(bq.Blocks))
	}
	h := d.Blocks[1].(*doc.Heading)
	if h.Level != 9 || len(h.Content) != 2 || !h.Content[1].(*doc.Run).Has(doc.MarkKindCode) {
		t.Errorf("heading = %s", d)
	}
	if cb := d.Blocks[2].(*doc.CodeBlock); cb.Text != "ls\npwd\n" || cb.Language != "sh" {
		t.Errorf("code block = %#v", cb)
	}
}

func TestTreeBuilder_CodeLeafKeepsActiveMarks(t *testing.T) {
	d := feed(start(TagParagraph), start(TagStrong), Event{Kind: EventCode, Text: "x"}, end(TagStrong), end(TagParagraph))
	r := runs(t, d.Blocks[0])[0]
	if len(r.Marks) != 2 || r.Marks[0].Kind != doc.MarkKindBold || r.Marks[1].Kind != doc.MarkKindCode {
		t.Errorf("marks = %v, want [bold code]", r.Marks)
	}
}

func TestFromMarkdown_BlockquoteTakesPriority(t *testing.T) {
	d := FromMarkdown([]byte("> - a\n> - b\n"))
	if len(d.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1\n%s", len(d.Blocks), d)
	}
	bq, ok := d.Blocks[0].(*doc.Blockquote)
	if !ok || len(bq.Blocks) != 3 {
		t.Fatalf("blockquote = %s", d)
	}
	for i, want := range []string{"a", "b"} {
		p, ok := bq.Blocks[i].(*doc.Paragraph)
		if !ok || doc.PlainText(p.Content) != want {
			t.Errorf("quote block[%d] = %#v, want paragraph %q", i, bq.Blocks[i], want)
		}
	}
	l, ok := bq.Blocks[2].(*doc.List)
	if !ok || len(l.Items) != 2 {
		t.Fatalf("quote list = %#v", bq.Blocks[2])
	}
	for i, item := range l.Items {
		if len(item.Blocks) != 1 || len(item.Blocks[0].(*doc.Paragraph).Content) != 0 {
			t.Errorf("item[%d] = %#v, want single empty paragraph", i, item.Blocks)
		}
	}
}

func TestTreeBuilder_NestedQuotes(t *testing.T) {
	d := feed(
		start(TagBlockQuote),
		start(TagBlockQuote), start(TagParagraph), txt("inner"), end(TagParagraph), end(TagBlockQuote),
		start(TagParagraph), txt("outer"), end(TagParagraph),
		end(TagBlockQuote),
	)
	outer := d.Blocks[0].(*doc.Blockquote)
	if len(outer.Blocks) != 2 {
		t.Fatalf("outer blocks = %d, want 2\n%s", len(outer.Blocks), d)
	}
	if inner, ok := outer.Blocks[0].(*doc.Blockquote); !ok || len(inner.Blocks) != 1 {
		t.Errorf("inner quote = %#v", outer.Blocks[0])
	}
}
