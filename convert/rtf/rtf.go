// Package rtf renders document trees as simple RTF suitable for word
// processors. Rendering is intentionally flat: only top level paragraphs,
// headings and blockquotes are written.
package rtf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"scout/doc"
)

const preamble = "{\\rtf1\\ansi\\ansicpg1252\\cocoartf2\n" +
	"{\\colortbl;\\red255\\green255\\blue255;}\n" +
	"{\\*\\expandedcolortbl;;}\n" +
	"\\margl1440\\margr1440\\margtsxn0\\margbsxn0\\vieww11900\\viewh8605\\viewkind0\n" +
	"\\pard\\tx720\\tx1440\\tx2160\\pardirnatural\\partightenfactor200\n\n"

// Font sizes are in half-points.
func headingSize(level int) int {
	switch level {
	case 2:
		return 32
	case 3:
		return 28
	case 4:
		return 24
	default:
		return 20
	}
}

// Body renders chapter content without document header and footer. Absent
// content renders as nothing.
func Body(d *doc.Document) string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range d.Blocks {
		switch b := b.(type) {
		case *doc.Paragraph:
			sb.WriteString("{\\pard ")
			for _, in := range b.Content {
				r, ok := in.(*doc.Run)
				if !ok {
					continue
				}
				if r.Has(doc.MarkKindBold) {
					sb.WriteString("\\b ")
				}
				if r.Has(doc.MarkKindItalic) {
					sb.WriteString("\\i ")
				}
				sb.WriteString(Escape(r.Text))
				// formatting is reset after every run
				sb.WriteString("\\b0\\i0 ")
			}
			sb.WriteString("\\par}\n")
		case *doc.Heading:
			fmt.Fprintf(&sb, "{\\pard \\fs%d \\b %s\\b0\\par}\n", headingSize(b.Level), Escape(doc.PlainText(b.Content)))
		case *doc.Blockquote:
			sb.WriteString("{\\pard \\li720 ")
			for _, nested := range b.Blocks {
				if p, ok := nested.(*doc.Paragraph); ok {
					sb.WriteString(Escape(doc.PlainText(p.Content)))
				}
			}
			sb.WriteString("\\par}\n")
		case *doc.List, *doc.CodeBlock, *doc.HorizontalRule, *doc.ColorBleed, *doc.ImageBleed:
			// not representable in flat output
		}
	}
	return sb.String()
}

// Document renders chapters into single RTF document. Every chapter starts
// with "Chapter <id>" heading, chapters are separated by page breaks.
func Document(chapters []*doc.Chapter) []byte {
	var sb strings.Builder
	sb.WriteString(preamble)
	for i, ch := range chapters {
		fmt.Fprintf(&sb, "{\\pard \\fs28 \\b Chapter %d\\b0\\par}\n", ch.ID)
		sb.WriteString("{\\pard \\par}\n")
		sb.WriteString("{\\pard \\par}\n")
		sb.WriteString(Body(ch.Doc))
		if i < len(chapters)-1 {
			sb.WriteString("\\page\n")
		}
	}
	sb.WriteString("}")
	return []byte(sb.String())
}

// FileName returns export file name. When exported ids do not cover the whole
// project (total is canonical chapter count) they are listed in the name.
func FileName(title string, date time.Time, ids []uint32, total int) string {
	base := strings.ReplaceAll(title, " ", "_") + "_" + date.Format(time.DateOnly)
	if len(ids) == total {
		return base + ".rtf"
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return base + "_Chapters_" + strings.Join(parts, "-") + ".rtf"
}

// Escape quotes RTF special characters and writes everything outside ASCII
// as \uN? control words (UTF-16 code units, signed).
func Escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString("\\line ")
		case r < 0x80:
			sb.WriteRune(r)
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%d?\\u%d?", int16(hi), int16(lo))
		default:
			fmt.Fprintf(&sb, "\\u%d?", int16(r))
		}
	}
	return sb.String()
}
