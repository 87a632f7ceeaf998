package content

import (
	"fmt"
	"strings"
)

// Section is a titled piece of imported text.
type Section struct {
	Title   string
	Content string
}

// Split breaks text into sections at lines starting with delimiter. Lines
// before the first delimiter are discarded. When extractTitles is set, title
// comes from the rest of the delimiter line and empty sections are dropped,
// otherwise sections are named "Chapter N" and kept even when empty. Input
// without any usable section is returned whole as "Chapter 1".
func Split(src, delimiter string, extractTitles bool) []Section {
	var (
		sections []Section
		current  *Section
		lines    []string
		num      = 1
	)

	closeSection := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(lines, "\n"))
		if current.Content != "" || !extractTitles {
			sections = append(sections, *current)
			num++
		}
	}

	for line := range strings.Lines(src) {
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if !strings.HasPrefix(line, delimiter) {
			if current != nil {
				lines = append(lines, line)
			}
			continue
		}

		closeSection()

		title := chapterTitle(num)
		if extractTitles {
			if rest := strings.TrimSpace(strings.TrimPrefix(line, delimiter)); rest != "" {
				title = rest
			}
		}
		current, lines = &Section{Title: title}, nil
	}
	closeSection()

	if len(sections) == 0 {
		return []Section{{Title: chapterTitle(1), Content: src}}
	}
	return sections
}

func chapterTitle(n int) string {
	return fmt.Sprintf("Chapter %d", n)
}
