// Package content turns authored text (plain or markdown) into document trees
// and prepares imported files for conversion.
package content

import (
	"strings"

	"scout/doc"
)

// FromText converts plain text into document tree: blank lines separate
// paragraphs, surrounding whitespace is trimmed and empty paragraphs are
// dropped.
func FromText(src string) *doc.Document {
	var blocks []doc.Block
	for part := range strings.SplitSeq(src, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		blocks = append(blocks, &doc.Paragraph{Content: []doc.Inline{&doc.Run{Text: part}}})
	}
	return (&doc.Document{Blocks: blocks}).Normalize()
}
