package content

import (
	"slices"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		delimiter string
		extract   bool
		want      []Section
	}{
		{
			name:      "extract titles",
			src:       "junk\n## A\nfoo\nbar\n## \nbaz",
			delimiter: "## ",
			extract:   true,
			want:      []Section{{"A", "foo\nbar"}, {"Chapter 2", "baz"}},
		},
		{
			name:      "numbered titles keep empty sections",
			src:       "## One\n\n## Two\ntext\n",
			delimiter: "## ",
			want:      []Section{{"Chapter 1", ""}, {"Chapter 2", "text"}},
		},
		{
			name:      "empty sections dropped with extraction",
			src:       "## One\n   \n## Two\ntext\n## Three\n",
			delimiter: "## ",
			extract:   true,
			want:      []Section{{"Two", "text"}},
		},
		{
			name:      "crlf input",
			src:       "# A\r\nline one\r\nline two\r\n",
			delimiter: "# ",
			extract:   true,
			want:      []Section{{"A", "line one\nline two"}},
		},
		{
			name:      "no delimiter",
			src:       "  whole text\n",
			delimiter: "## ",
			extract:   true,
			want:      []Section{{"Chapter 1", "  whole text\n"}},
		},
		{
			name:      "only empty sections",
			src:       "## A\n## B\n",
			delimiter: "## ",
			extract:   true,
			want:      []Section{{"Chapter 1", "## A\n## B\n"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.src, tt.delimiter, tt.extract)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Split() = %q, want %q", got, tt.want)
			}
		})
	}
}
