package doc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Chapter documents are persisted in the editor's JSON flavor (TipTap/ProseMirror
// node trees): {"type":"doc","content":[...]}.

var (
	// ErrNotDocument is returned when JSON is well formed but its root is not a document node.
	ErrNotDocument = errors.New("root node is not a document")
)

const (
	nodeDoc            = "doc"
	nodeParagraph      = "paragraph"
	nodeHeading        = "heading"
	nodeBlockquote     = "blockquote"
	nodeBulletList     = "bulletList"
	nodeOrderedList    = "orderedList"
	nodeListItem       = "listItem"
	nodeCodeBlock      = "codeBlock"
	nodeHorizontalRule = "horizontalRule"
	nodeColorBleed     = "colorBleed"
	nodeImageBleed     = "imageBleed"
	nodeText           = "text"
	nodeHardBreak      = "hardBreak"

	markTextStyle = "textStyle"
)

type jsonNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []jsonNode     `json:"content,omitempty"`
	Text    *string        `json:"text,omitempty"`
	Marks   []jsonMark     `json:"marks,omitempty"`
}

type jsonMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Decode parses chapter JSON. Unknown node and mark types are skipped, so
// documents written by newer editors still load.
func Decode(data []byte) (*Document, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}
	if root.Type != nodeDoc {
		return nil, fmt.Errorf("%w: %q", ErrNotDocument, root.Type)
	}
	return &Document{Blocks: decodeBlocks(root.Content)}, nil
}

// Encode produces indented chapter JSON.
func Encode(d *Document) ([]byte, error) {
	root := jsonNode{Type: nodeDoc, Content: encodeBlocks(d.Blocks)}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("unable to encode document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeBlocks(nodes []jsonNode) []Block {
	blocks := make([]Block, 0, len(nodes))
	for _, n := range nodes {
		if b := decodeBlock(n); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func decodeBlock(n jsonNode) Block {
	switch n.Type {
	case nodeParagraph:
		return &Paragraph{Align: attrString(n.Attrs, "textAlign"), Content: decodeInlines(n.Content)}
	case nodeHeading:
		return &Heading{Level: attrInt(n.Attrs, "level"), Align: attrString(n.Attrs, "textAlign"), Content: decodeInlines(n.Content)}
	case nodeBlockquote:
		return &Blockquote{Blocks: decodeBlocks(n.Content)}
	case nodeBulletList, nodeOrderedList:
		l := &List{Ordered: n.Type == nodeOrderedList}
		for _, item := range n.Content {
			if item.Type != nodeListItem {
				continue
			}
			l.Items = append(l.Items, ListItem{Blocks: decodeBlocks(item.Content)})
		}
		return l
	case nodeCodeBlock:
		var sb strings.Builder
		for _, c := range n.Content {
			if c.Text != nil {
				sb.WriteString(*c.Text)
			}
		}
		return &CodeBlock{Language: attrString(n.Attrs, "language"), Text: sb.String()}
	case nodeHorizontalRule:
		return &HorizontalRule{}
	case nodeColorBleed:
		return &ColorBleed{
			Background: attrString(n.Attrs, "backgroundColor"),
			Foreground: attrString(n.Attrs, "textColor"),
			Blocks:     decodeBlocks(n.Content),
		}
	case nodeImageBleed:
		return &ImageBleed{Name: attrString(n.Attrs, "name"), Alt: attrString(n.Attrs, "alt")}
	default:
		return nil
	}
}

func decodeInlines(nodes []jsonNode) []Inline {
	var out []Inline
	for _, n := range nodes {
		switch n.Type {
		case nodeText:
			r := &Run{}
			if n.Text != nil {
				r.Text = *n.Text
			}
			for _, m := range n.Marks {
				if mark, ok := decodeMark(m); ok {
					r.Marks = append(r.Marks, mark)
				}
			}
			out = append(out, r)
		case nodeHardBreak:
			out = append(out, &HardBreak{})
		}
	}
	return out
}

func decodeMark(m jsonMark) (Mark, bool) {
	if m.Type == markTextStyle {
		mark := Mark{Kind: MarkKindStyle, FontFamily: attrString(m.Attrs, "fontFamily")}
		if size, ok := attrFloat(m.Attrs, "fontSize"); ok {
			mark.FontSize = &size
		}
		return mark, true
	}
	// style marks are only known under their chapter file name
	kind, err := ParseMarkKind(m.Type)
	if err != nil || kind == MarkKindStyle {
		return Mark{}, false
	}
	return Mark{Kind: kind}, true
}

func encodeBlocks(blocks []Block) []jsonNode {
	nodes := make([]jsonNode, 0, len(blocks))
	for _, b := range blocks {
		nodes = append(nodes, encodeBlock(b))
	}
	return nodes
}

func encodeBlock(b Block) jsonNode {
	switch b := b.(type) {
	case *Paragraph:
		n := jsonNode{Type: nodeParagraph, Content: encodeInlines(b.Content)}
		if b.Align != "" {
			n.Attrs = map[string]any{"textAlign": b.Align}
		}
		return n
	case *Heading:
		n := jsonNode{Type: nodeHeading, Attrs: map[string]any{}, Content: encodeInlines(b.Content)}
		if b.Level > 0 {
			n.Attrs["level"] = b.Level
		}
		if b.Align != "" {
			n.Attrs["textAlign"] = b.Align
		}
		return n
	case *Blockquote:
		return jsonNode{Type: nodeBlockquote, Content: encodeBlocks(b.Blocks)}
	case *List:
		n := jsonNode{Type: nodeBulletList}
		if b.Ordered {
			n.Type = nodeOrderedList
		}
		for _, item := range b.Items {
			n.Content = append(n.Content, jsonNode{Type: nodeListItem, Content: encodeBlocks(item.Blocks)})
		}
		return n
	case *CodeBlock:
		var lang any
		if b.Language != "" {
			lang = b.Language
		}
		n := jsonNode{Type: nodeCodeBlock, Attrs: map[string]any{"language": lang}}
		if b.Text != "" {
			n.Content = []jsonNode{{Type: nodeText, Text: &b.Text}}
		}
		return n
	case *HorizontalRule:
		return jsonNode{Type: nodeHorizontalRule}
	case *ColorBleed:
		return jsonNode{
			Type:    nodeColorBleed,
			Attrs:   map[string]any{"backgroundColor": b.BackgroundColor(), "textColor": b.TextColor()},
			Content: encodeBlocks(b.Blocks),
		}
	case *ImageBleed:
		return jsonNode{Type: nodeImageBleed, Attrs: map[string]any{"name": b.Name, "alt": b.Alt}}
	default:
		panic(fmt.Sprintf("unexpected block type %T", b))
	}
}

func encodeInlines(content []Inline) []jsonNode {
	var nodes []jsonNode
	for _, in := range content {
		switch in := in.(type) {
		case *Run:
			n := jsonNode{Type: nodeText, Text: &in.Text}
			for _, m := range in.Marks {
				n.Marks = append(n.Marks, encodeMark(m))
			}
			nodes = append(nodes, n)
		case *HardBreak:
			nodes = append(nodes, jsonNode{Type: nodeHardBreak})
		}
	}
	return nodes
}

func encodeMark(m Mark) jsonMark {
	if m.Kind != MarkKindStyle {
		return jsonMark{Type: m.Kind.String()}
	}
	attrs := map[string]any{}
	if m.FontSize != nil {
		attrs["fontSize"] = *m.FontSize
	}
	if m.FontFamily != "" {
		attrs["fontFamily"] = m.FontFamily
	}
	return jsonMark{Type: markTextStyle, Attrs: attrs}
}

func attrString(attrs map[string]any, name string) string {
	if s, ok := attrs[name].(string); ok {
		return s
	}
	return ""
}

func attrInt(attrs map[string]any, name string) int {
	if f, ok := attrFloat(attrs, name); ok && f > 0 {
		return int(f)
	}
	return 0
}

func attrFloat(attrs map[string]any, name string) (float64, bool) {
	switch v := attrs[name].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
