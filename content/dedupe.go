package content

import (
	"fmt"
	"strings"
)

// Dedupe returns candidate if its lower case form is not in used, otherwise
// candidate with the smallest " (n)" suffix which is not taken. Caller is
// responsible for adding the result to used.
func Dedupe(candidate string, used map[string]struct{}) string {
	if _, taken := used[strings.ToLower(candidate)]; !taken {
		return candidate
	}
	for n := 1; ; n++ {
		title := fmt.Sprintf("%s (%d)", candidate, n)
		if _, taken := used[strings.ToLower(title)]; !taken {
			return title
		}
	}
}

// TitleSet keeps lower case titles already in use.
type TitleSet map[string]struct{}

// NewTitleSet seeds set with existing titles.
func NewTitleSet(titles ...string) TitleSet {
	s := make(TitleSet, len(titles))
	for _, t := range titles {
		s.Add(t)
	}
	return s
}

// Add marks title as used.
func (s TitleSet) Add(title string) {
	s[strings.ToLower(title)] = struct{}{}
}

// Unique returns deduplicated title and marks it as used.
func (s TitleSet) Unique(candidate string) string {
	title := Dedupe(candidate, s)
	s.Add(title)
	return title
}
