package convert

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"scout/config"
	"scout/state"
)

// buildOutputPath returns location of export file named name inside dst. Name
// stem is cleaned up and if requested transliterated, extension is kept.
func buildOutputPath(name, dst string, env *state.LocalEnv) string {
	ext := filepath.Ext(name)
	return filepath.Join(dst, cleanStem(strings.TrimSuffix(name, ext), env)+ext)
}

func cleanStem(stem string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		// slug lowercases and joins words with '-', keep '_' used in export names
		parts := strings.Split(stem, "_")
		for i, p := range parts {
			parts[i] = slug.Make(p)
		}
		stem = strings.Join(parts, "_")
	}
	return config.CleanFileName(stem)
}
