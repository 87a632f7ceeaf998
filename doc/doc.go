// Package doc defines the rich-text document tree shared by input converters
// and output renderers.
package doc

import "strings"

// Document is the root of a chapter tree. Blocks is never empty once the
// document was produced by a converter or decoded: an empty document is a
// single empty paragraph.
type Document struct {
	Blocks []Block
}

// New returns document holding a single empty paragraph.
func New() *Document {
	return &Document{Blocks: []Block{&Paragraph{}}}
}

// Normalize makes sure document has at least one block.
func (d *Document) Normalize() *Document {
	if len(d.Blocks) == 0 {
		d.Blocks = []Block{&Paragraph{}}
	}
	return d
}

// Block is one of the structural units below. The set is closed - renderers
// switch over concrete types and must handle every one of them.
type Block interface {
	block()
}

// Inline is either a text run or a hard line break.
type Inline interface {
	inline()
}

type (
	// Paragraph with optional alignment ("left", "center", "right", "justify").
	Paragraph struct {
		Align   string
		Content []Inline
	}

	// Heading level is kept as parsed (0 means absent), renderers clamp it.
	Heading struct {
		Level   int
		Align   string
		Content []Inline
	}

	Blockquote struct {
		Blocks []Block
	}

	// List is either bullet or ordered list.
	List struct {
		Ordered bool
		Items   []ListItem
	}

	ListItem struct {
		Blocks []Block
	}

	CodeBlock struct {
		Language string
		Text     string
	}

	HorizontalRule struct{}

	// ColorBleed is full width colored panel.
	ColorBleed struct {
		Background string
		Foreground string
		Blocks     []Block
	}

	// ImageBleed is full width image referencing project asset by name.
	ImageBleed struct {
		Name string
		Alt  string
	}
)

func (*Paragraph) block()      {}
func (*Heading) block()        {}
func (*Blockquote) block()     {}
func (*List) block()           {}
func (*CodeBlock) block()      {}
func (*HorizontalRule) block() {}
func (*ColorBleed) block()     {}
func (*ImageBleed) block()     {}

// Default colors for color bleed panels.
const (
	DefaultBleedBackground = "#000000"
	DefaultBleedForeground = "#ffffff"
)

// BackgroundColor returns panel background or default one.
func (c *ColorBleed) BackgroundColor() string {
	if c.Background == "" {
		return DefaultBleedBackground
	}
	return c.Background
}

// TextColor returns panel text color or default one.
func (c *ColorBleed) TextColor() string {
	if c.Foreground == "" {
		return DefaultBleedForeground
	}
	return c.Foreground
}

type (
	// Run is a span of text with formatting marks applied in order.
	Run struct {
		Text  string
		Marks []Mark
	}

	HardBreak struct{}
)

func (*Run) inline()       {}
func (*HardBreak) inline() {}

// Has reports if run carries mark of the requested kind.
func (r *Run) Has(kind MarkKind) bool {
	for _, m := range r.Marks {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// Mark is a formatting attribute of a run. FontSize and FontFamily are only
// meaningful for MarkKindStyle.
type Mark struct {
	Kind       MarkKind
	FontSize   *float64
	FontFamily string
}

// HasStyle reports if style mark carries anything to render.
func (m Mark) HasStyle() bool {
	return m.Kind == MarkKindStyle && (m.FontSize != nil || m.FontFamily != "")
}

// PlainText returns concatenated text of runs ignoring marks and breaks.
func PlainText(content []Inline) string {
	var sb strings.Builder
	for _, in := range content {
		if r, ok := in.(*Run); ok {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

// Chapter is a unit of a project. Doc is nil when chapter content is absent
// or could not be parsed.
type Chapter struct {
	ID    uint32
	Title string
	Doc   *Document
}

// Blocks returns chapter content or nothing when content is absent.
func (c *Chapter) Blocks() []Block {
	if c.Doc == nil {
		return nil
	}
	return c.Doc.Blocks
}
