package content

import (
	"slices"
	"strings"

	"scout/doc"
)

// placement tells where completed block goes.
type placement int

const (
	placeDocument placement = iota
	placeListItem
	placeBlockquote
)

// container is an open list item or blockquote collecting finished blocks.
type container struct {
	place  placement
	blocks []doc.Block
}

type listFrame struct {
	ordered bool
	items   []doc.ListItem
}

// treeBuilder turns markdown event stream into document tree. It never fails:
// anything it does not understand is dropped.
type treeBuilder struct {
	root       []doc.Block
	containers []*container
	lists      []*listFrame

	para     []doc.Inline
	paraOpen bool

	bold, italic bool

	headingLevel int
	heading      []doc.Inline

	inCode   bool
	codeLang string
	code     strings.Builder
}

// FromMarkdown converts CommonMark source into document tree.
func FromMarkdown(src []byte) *doc.Document {
	b := &treeBuilder{}
	for e := range Events(src) {
		b.handle(e)
	}
	return (&doc.Document{Blocks: b.root}).Normalize()
}

func (b *treeBuilder) handle(e Event) {
	switch e.Kind {
	case EventStart:
		b.start(e)
	case EventEnd:
		b.end(e)
	case EventText:
		b.leaf(e.Text, false)
	case EventCode:
		b.leaf(e.Text, true)
	case EventSoftBreak, EventHardBreak:
		// both collapse into a single space
		if b.paraOpen && len(b.para) > 0 {
			if r, ok := b.para[len(b.para)-1].(*doc.Run); ok {
				r.Text += " "
			}
		}
	}
}

func (b *treeBuilder) start(e Event) {
	switch e.Tag {
	case TagParagraph:
		if !b.paraOpen {
			b.openParagraph()
		}
	case TagHeading:
		b.flushParagraph()
		b.headingLevel, b.heading = e.Level, nil
	case TagStrong:
		b.bold = true
	case TagEmphasis:
		b.italic = true
	case TagCodeBlock:
		b.flushParagraph()
		b.inCode, b.codeLang = true, e.Language
		b.code.Reset()
	case TagList:
		b.flushParagraph()
		b.lists = append(b.lists, &listFrame{ordered: e.Ordered})
	case TagItem:
		b.containers = append(b.containers, &container{place: placeListItem})
		// tight list items carry text without paragraph wrapper
		if !b.paraOpen {
			b.openParagraph()
		}
	case TagBlockQuote:
		b.flushParagraph()
		b.containers = append(b.containers, &container{place: placeBlockquote})
	}
}

func (b *treeBuilder) end(e Event) {
	switch e.Tag {
	case TagParagraph:
		if !b.paraOpen {
			return
		}
		content := b.closeParagraph()
		if b.placement() == placeDocument && len(content) == 0 {
			return
		}
		b.emit(&doc.Paragraph{Content: content})
	case TagHeading:
		if b.headingLevel > 0 {
			b.emit(&doc.Heading{Level: b.headingLevel, Content: b.heading})
			b.headingLevel, b.heading = 0, nil
		}
	case TagStrong:
		b.bold = false
	case TagEmphasis:
		b.italic = false
	case TagCodeBlock:
		if b.inCode {
			b.emit(&doc.CodeBlock{Language: b.codeLang, Text: b.code.String()})
			b.inCode, b.codeLang = false, ""
			b.code.Reset()
		}
	case TagList:
		if len(b.lists) == 0 {
			return
		}
		l := b.lists[len(b.lists)-1]
		b.lists = b.lists[:len(b.lists)-1]
		if len(l.items) > 0 {
			b.emit(&doc.List{Ordered: l.ordered, Items: l.items})
		}
	case TagItem:
		b.flushParagraph()
		c := b.pop(placeListItem)
		if c == nil || len(b.lists) == 0 {
			return
		}
		blocks := c.blocks
		if len(blocks) == 0 {
			blocks = []doc.Block{&doc.Paragraph{}}
		}
		l := b.lists[len(b.lists)-1]
		l.items = append(l.items, doc.ListItem{Blocks: blocks})
	case TagBlockQuote:
		b.flushParagraph()
		if c := b.pop(placeBlockquote); c != nil && len(c.blocks) > 0 {
			b.emit(&doc.Blockquote{Blocks: c.blocks})
		}
	}
}

// leaf routes text to code block, heading or paragraph - in that order.
func (b *treeBuilder) leaf(text string, code bool) {
	if b.inCode {
		b.code.WriteString(text)
		return
	}

	var marks []doc.Mark
	if b.bold {
		marks = append(marks, doc.Bold)
	}
	if b.italic {
		marks = append(marks, doc.Italic)
	}
	if code {
		marks = append(marks, doc.Code)
	}

	switch {
	case b.headingLevel > 0:
		b.heading = appendRun(b.heading, text, marks)
	case b.paraOpen:
		b.para = appendRun(b.para, text, marks)
	}
}

// placement returns destination context for completed blocks. Any open
// blockquote wins over open list items, list items win over document root.
func (b *treeBuilder) placement() placement {
	place := placeDocument
	for _, c := range b.containers {
		place = max(place, c.place)
	}
	return place
}

// target returns innermost open container of the given kind.
func (b *treeBuilder) target(place placement) *container {
	for _, c := range slices.Backward(b.containers) {
		if c.place == place {
			return c
		}
	}
	return nil
}

func (b *treeBuilder) emit(block doc.Block) {
	place := b.placement()
	if place == placeDocument {
		b.root = append(b.root, block)
		return
	}
	c := b.target(place)
	c.blocks = append(c.blocks, block)
}

func (b *treeBuilder) pop(place placement) *container {
	if len(b.containers) == 0 || b.containers[len(b.containers)-1].place != place {
		return nil
	}
	c := b.containers[len(b.containers)-1]
	b.containers = b.containers[:len(b.containers)-1]
	return c
}

func (b *treeBuilder) openParagraph() {
	b.para, b.paraOpen = nil, true
}

func (b *treeBuilder) closeParagraph() []doc.Inline {
	content := b.para
	b.para, b.paraOpen = nil, false
	return content
}

// flushParagraph closes pending paragraph (usually pre-opened by a list item)
// keeping it only when it has content.
func (b *treeBuilder) flushParagraph() {
	if !b.paraOpen {
		return
	}
	if content := b.closeParagraph(); len(content) > 0 {
		b.emit(&doc.Paragraph{Content: content})
	}
}

// appendRun merges text into previous run when formatting is the same.
func appendRun(content []doc.Inline, text string, marks []doc.Mark) []doc.Inline {
	if len(content) > 0 {
		if last, ok := content[len(content)-1].(*doc.Run); ok && slices.Equal(last.Marks, marks) {
			last.Text += text
			return content
		}
	}
	return append(content, &doc.Run{Text: text, Marks: marks})
}
