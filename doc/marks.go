package doc

//go:generate go tool go-enum --names

// Kind of inline formatting.
// ENUM(bold, italic, strike, code, style)
type MarkKind int

// Bold, Italic, Strike and Code are shortcuts for simple marks.
var (
	Bold   = Mark{Kind: MarkKindBold}
	Italic = Mark{Kind: MarkKindItalic}
	Strike = Mark{Kind: MarkKindStrike}
	Code   = Mark{Kind: MarkKindCode}
)

// Style returns style mark, zero size means absent.
func Style(size float64, family string) Mark {
	m := Mark{Kind: MarkKindStyle, FontFamily: family}
	if size != 0 {
		m.FontSize = &size
	}
	return m
}
