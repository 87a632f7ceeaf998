package epub

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"scout/doc"
)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Escape replaces XML special characters with entities and drops characters
// XML does not allow at all.
func Escape(s string) string {
	return xmlEscaper.Replace(xmlText(s))
}

// xmlText removes runes outside of XML Char production.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == 0x9 || r == 0xA || r == 0xD,
			0x20 <= r && r <= 0xD7FF,
			0xE000 <= r && r <= 0xFFFD,
			0x10000 <= r && r <= 0x10FFFF:
			return r
		}
		return -1
	}, s)
}

// RenderBlocks renders chapter blocks as XHTML fragment, one element per line.
// Code blocks are not rendered.
func RenderBlocks(blocks []doc.Block) string {
	var sb strings.Builder
	renderBlocks(&sb, blocks)
	return sb.String()
}

func renderBlocks(sb *strings.Builder, blocks []doc.Block) {
	for _, b := range blocks {
		switch b := b.(type) {
		case *doc.Paragraph:
			inner := RenderInline(b.Content)
			if inner == "" {
				inner = "&#160;"
			}
			fmt.Fprintf(sb, "<p%s>%s</p>\n", alignStyle(b.Align), inner)
		case *doc.Heading:
			level := min(max(b.Level, 2), 6)
			fmt.Fprintf(sb, "<h%d%s>%s</h%d>\n", level, alignStyle(b.Align), RenderInline(b.Content), level)
		case *doc.Blockquote:
			sb.WriteString("<blockquote>\n")
			renderBlocks(sb, b.Blocks)
			sb.WriteString("</blockquote>\n")
		case *doc.List:
			tag := "ul"
			if b.Ordered {
				tag = "ol"
			}
			fmt.Fprintf(sb, "<%s>\n", tag)
			for _, item := range b.Items {
				sb.WriteString("<li>")
				for _, nested := range item.Blocks {
					// only inline content of direct paragraphs makes it into item
					if p, ok := nested.(*doc.Paragraph); ok {
						sb.WriteString(RenderInline(p.Content))
					}
				}
				sb.WriteString("</li>\n")
			}
			fmt.Fprintf(sb, "</%s>\n", tag)
		case *doc.HorizontalRule:
			sb.WriteString("<hr/>\n")
		case *doc.ColorBleed:
			fmt.Fprintf(sb, "<div style=\"background-color:%s;color:%s;margin:0 -2em;padding:2em;\">\n",
				Escape(b.BackgroundColor()), Escape(b.TextColor()))
			renderBlocks(sb, b.Blocks)
			sb.WriteString("</div>\n")
		case *doc.ImageBleed:
			if b.Name != "" {
				fmt.Fprintf(sb, "<div class=\"image-bleed\"><img src=\"../%s/%s\" alt=\"%s\"/></div>\n",
					imagesDir, Escape(b.Name), Escape(b.Alt))
			}
		case *doc.CodeBlock:
		}
	}
}

// RenderInline renders runs and line breaks. Marks are opened in order and
// closed in reverse.
func RenderInline(content []doc.Inline) string {
	var sb strings.Builder
	for _, in := range content {
		switch in := in.(type) {
		case *doc.HardBreak:
			sb.WriteString("<br/>")
		case *doc.Run:
			for _, m := range in.Marks {
				sb.WriteString(openTag(m))
			}
			sb.WriteString(Escape(in.Text))
			for _, m := range slices.Backward(in.Marks) {
				sb.WriteString(closeTag(m))
			}
		}
	}
	return sb.String()
}

func openTag(m doc.Mark) string {
	switch m.Kind {
	case doc.MarkKindBold:
		return "<strong>"
	case doc.MarkKindItalic:
		return "<em>"
	case doc.MarkKindStrike:
		return "<s>"
	case doc.MarkKindCode:
		return "<code>"
	case doc.MarkKindStyle:
		if !m.HasStyle() {
			return ""
		}
		var style strings.Builder
		if m.FontSize != nil {
			style.WriteString("font-size:" + strconv.FormatFloat(*m.FontSize, 'f', -1, 64) + "pt;")
		}
		if m.FontFamily != "" {
			style.WriteString("font-family:" + Escape(m.FontFamily) + ";")
		}
		return `<span style="` + style.String() + `">`
	}
	return ""
}

func closeTag(m doc.Mark) string {
	switch m.Kind {
	case doc.MarkKindBold:
		return "</strong>"
	case doc.MarkKindItalic:
		return "</em>"
	case doc.MarkKindStrike:
		return "</s>"
	case doc.MarkKindCode:
		return "</code>"
	case doc.MarkKindStyle:
		if m.HasStyle() {
			return "</span>"
		}
	}
	return ""
}

func alignStyle(align string) string {
	if align == "" || align == "left" {
		return ""
	}
	return ` style="text-align:` + Escape(align) + `"`
}

// chapterPage wraps rendered chapter body into complete XHTML document.
func chapterPage(title string, blocks []doc.Block) (*etree.Document, error) {
	page := etree.NewDocument()
	page.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	page.CreateDirective("DOCTYPE html")

	html := page.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")

	head := html.CreateElement("head")
	head.CreateElement("title").SetText(xmlText(title))
	link := head.CreateElement("link")
	link.CreateAttr("rel", "stylesheet")
	link.CreateAttr("type", "text/css")
	link.CreateAttr("href", "../"+stylesheetName)

	body := html.CreateElement("body")

	fragment := etree.NewDocument()
	if err := fragment.ReadFromString("<body>\n" + RenderBlocks(blocks) + "</body>"); err != nil {
		return nil, fmt.Errorf("unable to parse rendered chapter: %w", err)
	}
	for _, t := range slices.Clone(fragment.Root().Child) {
		body.AddChild(t)
	}
	return page, nil
}
