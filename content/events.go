package content

import (
	"bytes"
	"iter"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// EventKind classifies markdown parse events.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventText
	EventCode
	EventSoftBreak
	EventHardBreak
)

// Tag identifies container opened or closed by start/end events.
type Tag int

const (
	TagParagraph Tag = iota
	TagHeading
	TagBlockQuote
	TagList
	TagItem
	TagCodeBlock
	TagStrong
	TagEmphasis
	TagLink
	TagImage
)

// Event is a single item of the linear markdown event stream. Level is set
// for headings, Ordered for lists, Language for code blocks and Text for
// text and code leaves.
type Event struct {
	Kind     EventKind
	Tag      Tag
	Level    int
	Ordered  bool
	Language string
	Text     string
}

var markdown = goldmark.New()

// Events parses CommonMark source and flattens resulting syntax tree into
// stream of start/end and leaf events in document order.
func Events(src []byte) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		root := markdown.Parser().Parse(text.NewReader(src))
		_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			events, status := nodeEvents(n, entering, src)
			for _, e := range events {
				if !yield(e) {
					return ast.WalkStop, nil
				}
			}
			return status, nil
		})
	}
}

func nodeEvents(n ast.Node, entering bool, src []byte) ([]Event, ast.WalkStatus) {
	edge := EventEnd
	if entering {
		edge = EventStart
	}

	switch n := n.(type) {
	case *ast.Paragraph:
		return []Event{{Kind: edge, Tag: TagParagraph}}, ast.WalkContinue
	case *ast.Heading:
		return []Event{{Kind: edge, Tag: TagHeading, Level: n.Level}}, ast.WalkContinue
	case *ast.Blockquote:
		return []Event{{Kind: edge, Tag: TagBlockQuote}}, ast.WalkContinue
	case *ast.List:
		return []Event{{Kind: edge, Tag: TagList, Ordered: n.IsOrdered()}}, ast.WalkContinue
	case *ast.ListItem:
		return []Event{{Kind: edge, Tag: TagItem}}, ast.WalkContinue
	case *ast.Emphasis:
		tag := TagEmphasis
		if n.Level >= 2 {
			tag = TagStrong
		}
		return []Event{{Kind: edge, Tag: tag}}, ast.WalkContinue
	case *ast.Link:
		return []Event{{Kind: edge, Tag: TagLink}}, ast.WalkContinue
	case *ast.Image:
		return []Event{{Kind: edge, Tag: TagImage}}, ast.WalkContinue
	case *ast.FencedCodeBlock:
		if !entering {
			return []Event{{Kind: EventEnd, Tag: TagCodeBlock}}, ast.WalkContinue
		}
		return codeBlockEvents(n, string(n.Language(src)), src), ast.WalkSkipChildren
	case *ast.CodeBlock:
		if !entering {
			return []Event{{Kind: EventEnd, Tag: TagCodeBlock}}, ast.WalkContinue
		}
		return codeBlockEvents(n, "", src), ast.WalkSkipChildren
	}

	if !entering {
		return nil, ast.WalkContinue
	}

	switch n := n.(type) {
	case *ast.Text:
		events := []Event{{Kind: EventText, Text: string(unescape(n.Segment.Value(src)))}}
		switch {
		case n.HardLineBreak():
			events = append(events, Event{Kind: EventHardBreak})
		case n.SoftLineBreak():
			events = append(events, Event{Kind: EventSoftBreak})
		}
		return events, ast.WalkContinue
	case *ast.String:
		return []Event{{Kind: EventText, Text: string(n.Value)}}, ast.WalkContinue
	case *ast.CodeSpan:
		var buf bytes.Buffer
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				buf.Write(c.Segment.Value(src))
			case *ast.String:
				buf.Write(c.Value)
			}
		}
		return []Event{{Kind: EventCode, Text: string(bytes.ReplaceAll(buf.Bytes(), []byte{'\n'}, []byte{' '}))}}, ast.WalkSkipChildren
	case *ast.AutoLink:
		return []Event{{Kind: EventText, Text: string(n.Label(src))}}, ast.WalkContinue
	case *ast.RawHTML, *ast.HTMLBlock:
		return nil, ast.WalkSkipChildren
	}
	return nil, ast.WalkContinue
}

func codeBlockEvents(n ast.Node, lang string, src []byte) []Event {
	events := []Event{{Kind: EventStart, Tag: TagCodeBlock, Language: lang}}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		events = append(events, Event{Kind: EventText, Text: string(line.Value(src))})
	}
	return events
}

// unescape resolves backslash escapes and character references the same way
// goldmark HTML renderer does when writing text.
func unescape(v []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(v)))
}
