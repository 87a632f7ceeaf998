package convert

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"scout/config"
	"scout/doc"
	"scout/project"
	"scout/settings"
	"scout/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	env.DefaultStyle = defaultStylesheet
	env.Settings = settings.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	return ctx, env
}

func paragraph(text string) *doc.Document {
	return &doc.Document{Blocks: []doc.Block{&doc.Paragraph{Content: []doc.Inline{&doc.Run{Text: text}}}}}
}

// setupProject makes project with chapters 1 and 3 on disk and 2 only in
// the record.
func setupProject(t *testing.T) *project.Project {
	t.Helper()
	p, err := project.Create(filepath.Join(t.TempDir(), "novel"), "My Novel")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []uint32{1, 2, 3} {
		if id != 2 {
			if err := p.WriteChapter(id, paragraph("text of chapter")); err != nil {
				t.Fatal(err)
			}
		}
		p.Append(id)
	}
	p.SetChapterTitle(1, "Opening")
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}
	return p
}

var testDate = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

func TestExportProject_RTF(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	p := setupProject(t)
	dst := t.TempDir()

	out, err := exportProject(ctx, p, config.OutputFmtRtf, nil, dst, testDate, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("exportProject() error = %v", err)
	}
	if want := filepath.Join(dst, "My_Novel_2025-01-02.rtf"); out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	rtf := string(data)
	if !strings.HasPrefix(rtf, "{\\rtf1") || !strings.Contains(rtf, "Chapter 1") || !strings.Contains(rtf, "Chapter 3") {
		t.Errorf("unexpected RTF:\n%s", rtf)
	}
	if strings.Contains(rtf, "Chapter 2") {
		t.Error("missing chapter was exported")
	}
}

func TestExportProject_SelectedChapters(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	p := setupProject(t)
	dst := t.TempDir()

	out, err := exportProject(ctx, p, config.OutputFmtRtf, []uint32{3, 1, 42}, dst, testDate, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("exportProject() error = %v", err)
	}
	if got := filepath.Base(out); got != "My_Novel_2025-01-02_Chapters_1-3.rtf" {
		t.Errorf("output name = %q", got)
	}

	if _, err := exportProject(ctx, p, config.OutputFmtRtf, []uint32{42}, dst, testDate, zaptest.NewLogger(t)); err == nil {
		t.Error("exportProject() with unknown ids succeeded")
	}
}

func TestExportProject_EPUB(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	p := setupProject(t)
	p.SetFont("Georgia")
	dst := filepath.Join(t.TempDir(), "out")

	out, err := exportProject(ctx, p, config.OutputFmtEpub, nil, dst, testDate, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("exportProject() error = %v", err)
	}
	if got := filepath.Base(out); got != "My_Novel_2025-01-02.epub" {
		t.Errorf("output name = %q", got)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open epub: %v", err)
	}
	defer r.Close()

	var pages []string
	var css string
	for _, f := range r.File {
		switch {
		case strings.HasSuffix(f.Name, ".xhtml") && strings.Contains(f.Name, "/ch"):
			pages = append(pages, f.Name)
		case strings.HasSuffix(f.Name, ".css"):
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatal(err)
			}
			css = string(data)
		}
	}
	// missing chapter is kept as an empty page
	if len(pages) != 3 {
		t.Errorf("chapter pages = %v, want 3", pages)
	}
	if !strings.Contains(css, "text-indent") || !strings.Contains(css, `"Georgia"`) {
		t.Errorf("stylesheet lacks defaults or project font:\n%s", css)
	}
}

func TestExportProject_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	p := setupProject(t)
	dst := t.TempDir()
	log := zaptest.NewLogger(t)

	if _, err := exportProject(ctx, p, config.OutputFmtRtf, nil, dst, testDate, log); err != nil {
		t.Fatal(err)
	}
	if _, err := exportProject(ctx, p, config.OutputFmtRtf, nil, dst, testDate, log); !errors.Is(err, ErrOutputExists) {
		t.Errorf("second export error = %v, want ErrOutputExists", err)
	}
	env.Overwrite = true
	if _, err := exportProject(ctx, p, config.OutputFmtRtf, nil, dst, testDate, log); err != nil {
		t.Errorf("export with overwrite error = %v", err)
	}
}

func TestExportProject_DebugReport(t *testing.T) {
	ctx, env := setupTestEnv(t)
	rptCfg := &config.ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := rptCfg.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	env.Rpt = rpt
	p := setupProject(t)

	if _, err := exportProject(ctx, p, config.OutputFmtRtf, nil, t.TempDir(), testDate, zaptest.NewLogger(t)); err != nil {
		t.Fatal(err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("close report: %v", err)
	}

	r, err := zip.OpenReader(rptCfg.Destination)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	for _, want := range []string{project.RecordName, "export-1.txt", "export-3.txt"} {
		if !slices.Contains(names, want) {
			t.Errorf("report entries = %v, missing %s", names, want)
		}
	}
}

func TestPrepareStylesheet(t *testing.T) {
	_, env := setupTestEnv(t)
	if err := prepareStylesheet(env, zaptest.NewLogger(t)); err != nil || len(env.DefaultStyle) == 0 {
		t.Fatalf("prepareStylesheet() = %v, style %d bytes", err, len(env.DefaultStyle))
	}

	path := filepath.Join(t.TempDir(), "my.css")
	if err := os.WriteFile(path, []byte("@import 'more.css'; p{}"), 0644); err != nil {
		t.Fatal(err)
	}
	env.Cfg.Document.StylesheetPath = path
	core, logs := observer.New(zap.WarnLevel)
	if err := prepareStylesheet(env, zap.New(core)); err != nil || string(env.DefaultStyle) != "@import 'more.css'; p{}" {
		t.Errorf("prepareStylesheet() = %v, style %q", err, env.DefaultStyle)
	}
	if logs.FilterMessageSnippet("external resources").Len() != 1 {
		t.Errorf("warnings = %v, want external resources warning", logs.All())
	}

	env.Cfg.Document.StylesheetPath = filepath.Join(t.TempDir(), "none.css")
	if err := prepareStylesheet(env, zaptest.NewLogger(t)); err == nil {
		t.Error("prepareStylesheet() with missing file succeeded")
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		in      string
		want    []uint32
		wantErr bool
	}{
		{"", nil, false},
		{"1", []uint32{1}, false},
		{" 3, 1 ,,7", []uint32{3, 1, 7}, false},
		{"1,x", nil, true},
		{"-1", nil, true},
		{"4294967296", nil, true},
	}
	for _, tt := range tests {
		got, err := parseIDs(tt.in)
		if (err != nil) != tt.wantErr || !slices.Equal(got, tt.want) {
			t.Errorf("parseIDs(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name: "export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Value: "epub"},
			&cli.StringFlag{Name: "chapters"},
			&cli.BoolFlag{Name: "overwrite"},
		},
		Action: Export,
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name: "import",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "filename-titles"},
			&cli.StringFlag{Name: "delimiter"},
			&cli.BoolFlag{Name: "extract-titles"},
		},
		Action: Import,
	}
}

func TestImportExportCommands(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := filepath.Join(t.TempDir(), "book")
	if _, err := project.Create(dir, "Book"); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "draft.md")
	if err := os.WriteFile(src, []byte("## One\ntext\n## Two\nmore text\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := importCommand().Run(ctx, []string{"import", "--delimiter", "##", "--extract-titles", dir, src})
	if err != nil {
		t.Fatalf("import error = %v", err)
	}

	p, err := project.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(p.Order(), []uint32{1, 2}) || p.ChapterTitle(2) != "Two" {
		t.Errorf("record after import = %v %q", p.Order(), p.ChapterTitle(2))
	}

	out := t.TempDir()
	if err := exportCommand().Run(ctx, []string{"export", "--to", "rtf", "--chapters", "2", dir, out}); err != nil {
		t.Fatalf("export error = %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(out, "Book_*_Chapters_2.rtf"))
	if len(matches) != 1 {
		t.Errorf("export produced %v", matches)
	}

	s, err := env.Settings.Load()
	if err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(dir)
	if s.LastProjectPath != abs {
		t.Errorf("last project = %q, want %q", s.LastProjectPath, abs)
	}
}

func TestCommands_Errors(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	dir := filepath.Join(t.TempDir(), "book")
	if _, err := project.Create(dir, "Book"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cmd  *cli.Command
		args []string
	}{
		{"export no project", exportCommand(), []string{"export"}},
		{"export bad format", exportCommand(), []string{"export", "--to", "pdf", dir}},
		{"export bad ids", exportCommand(), []string{"export", "--chapters", "a", dir}},
		{"export empty project", exportCommand(), []string{"export", dir}},
		{"import no sources", importCommand(), []string{"import", dir}},
		{"import not a project", importCommand(), []string{"import", t.TempDir(), dir}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx, tt.args); err == nil {
				t.Error("Run() error = nil")
			}
		})
	}
}
