// Package debug helps building readable dumps of in-memory trees for debug
// reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, one per tree node.
type TreeWriter struct {
	w      *strings.Builder
	indent string
}

// NewTreeWriter returns writer indenting every level with two spaces.
func NewTreeWriter() *TreeWriter {
	return NewTreeWriterIndent("  ")
}

func NewTreeWriterIndent(indent string) *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}, indent: indent}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Text writes "label: value" with value quoted, so whitespace and control
// characters stay visible. Empty value is written as is.
func (tw *TreeWriter) Text(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	if value != "" {
		value = strconv.Quote(value)
	}
	tw.w.WriteString(value)
	tw.w.WriteByte('\n')
}

// Node writes node name followed by its non empty attributes as
// "name key[value]". Attributes are key, value pairs, odd trailing key is
// ignored.
func (tw *TreeWriter) Node(depth int, name string, attrs ...string) {
	tw.pad(depth)
	tw.w.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		fmt.Fprintf(tw.w, " %s[%s]", attrs[i], attrs[i+1])
	}
	tw.w.WriteByte('\n')
}
