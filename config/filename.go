package config

import "strings"

const badFileName = "_bad_file_name_"

// CleanFileName removes characters not allowed in file names on this
// platform together with leading dots, so result never names hidden or
// parent entry.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(forbiddenFileChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = trimFileName(strings.TrimLeft(out, "."))
	if len(out) == 0 {
		out = badFileName
	}
	return out
}
