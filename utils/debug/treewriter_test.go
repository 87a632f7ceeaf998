package debug

import "testing"

func TestTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw.String() != "" {
		t.Fatalf("new writer = %q, want empty", tw.String())
	}

	tw.Line(0, "Document: %d blocks", 2)
	tw.Node(1, "Paragraph", "align", "center", "empty", "", "odd")
	tw.Text(2, "Run", "a\tb \"c\"")
	tw.Text(2, "Run", "")
	tw.Node(1, "HorizontalRule")

	want := "Document: 2 blocks\n" +
		"  Paragraph align[center]\n" +
		"    Run: \"a\\tb \\\"c\\\"\"\n" +
		"    Run: \n" +
		"  HorizontalRule\n"
	if got := tw.String(); got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}
}

func TestTreeWriterIndent(t *testing.T) {
	tests := []struct {
		indent string
		depth  int
		want   string
	}{
		{"  ", 0, "x\n"},
		{"  ", 3, "      x\n"},
		{"\t", 2, "\t\tx\n"},
		{"", 5, "x\n"},
	}
	for _, tt := range tests {
		tw := NewTreeWriterIndent(tt.indent)
		tw.Line(tt.depth, "x")
		if got := tw.String(); got != tt.want {
			t.Errorf("indent %q depth %d = %q, want %q", tt.indent, tt.depth, got, tt.want)
		}
	}
}
