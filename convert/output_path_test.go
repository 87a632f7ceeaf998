package convert

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"scout/config"
	"scout/state"
)

func setupTestEnvForOutputPath(t *testing.T, transliterate bool) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	return &state.LocalEnv{Log: zaptest.NewLogger(t), Cfg: cfg}
}

func TestBuildOutputPath(t *testing.T) {
	dst := filepath.Join("out", "dir")
	tests := []struct {
		name          string
		file          string
		transliterate bool
		want          string
	}{
		{"plain", "My_Novel_2025-01-02.rtf", false, "My_Novel_2025-01-02.rtf"},
		{"separator in title", "A/B_2025-01-02.rtf", false, "AB_2025-01-02.rtf"},
		{"leading dots", "..hidden_2025-01-02.epub", false, "hidden_2025-01-02.epub"},
		{"transliterated", "Café Noir_2025-01-02.rtf", true, "cafe-noir_2025-01-02.rtf"},
		{"transliterated chapters", "My_Novel_2025-01-02_Chapters_1-3.rtf", true, "my_novel_2025-01-02_chapters_1-3.rtf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.transliterate)
			if got := buildOutputPath(tt.file, dst, env); got != filepath.Join(dst, tt.want) {
				t.Errorf("buildOutputPath(%q) = %q, want %q", tt.file, got, filepath.Join(dst, tt.want))
			}
		})
	}
}
