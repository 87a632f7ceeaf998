package doc

import "slices"

// ImageNames returns names of assets referenced by image bleed blocks in
// document order, each name once. Empty names are ignored.
func ImageNames(d *Document, seen []string) []string {
	if d == nil {
		return seen
	}
	return collectImages(d.Blocks, seen)
}

func collectImages(blocks []Block, names []string) []string {
	for _, b := range blocks {
		switch b := b.(type) {
		case *ImageBleed:
			if b.Name != "" && !slices.Contains(names, b.Name) {
				names = append(names, b.Name)
			}
		case *Blockquote:
			names = collectImages(b.Blocks, names)
		case *ColorBleed:
			names = collectImages(b.Blocks, names)
		case *List:
			for _, item := range b.Items {
				names = collectImages(item.Blocks, names)
			}
		case *Paragraph, *Heading, *CodeBlock, *HorizontalRule:
		}
	}
	return names
}
