package convert

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"scout/assets"
	"scout/config"
	"scout/convert/epub"
	"scout/convert/rtf"
	"scout/css"
	"scout/doc"
	"scout/project"
	"scout/state"
)

//go:embed default.css
var defaultStylesheet []byte

// ErrOutputExists is returned when export file is already there and
// overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// Export is the action of "export" command.
func Export(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	dir, err := projectDir(cmd)
	if err != nil {
		return err
	}
	p, err := project.Open(dir)
	if err != nil {
		return err
	}

	format, err := config.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		return fmt.Errorf("unknown output format requested: %w", err)
	}
	ids, err := parseIDs(cmd.String("chapters"))
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = p.DefaultExportDir()
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := prepareStylesheet(env, log); err != nil {
		return err
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Export starting", zap.String("project", dir), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Export completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	out, err := exportProject(ctx, p, format, ids, dst, time.Now(), log)
	if err != nil {
		return err
	}
	log.Info("Output written", zap.String("file", out))

	if err := env.RememberProject(dir); err != nil {
		log.Warn("Unable to record last project", zap.Error(err))
	}
	return nil
}

// prepareStylesheet selects EPUB stylesheet: embedded default unless
// configuration names a file. External stylesheet is inspected, resources it
// refers to are not packaged.
func prepareStylesheet(env *state.LocalEnv, log *zap.Logger) error {
	env.DefaultStyle = defaultStylesheet
	path := env.Cfg.Document.StylesheetPath
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read style css from %q: %w", path, err)
	}
	env.DefaultStyle = data

	sum := css.Inspect(data, log)
	for _, e := range sum.Errors {
		log.Warn("Stylesheet problem", zap.String("file", path), zap.String("error", e))
	}
	if len(sum.Imports) > 0 || len(sum.URLs) > 0 {
		log.Warn("Stylesheet refers to external resources which will not be packaged",
			zap.String("file", path), zap.Strings("imports", sum.Imports), zap.Strings("urls", sum.URLs))
	}
	return nil
}

// exportProject writes requested chapters of p (all when ids is empty) into
// dst and returns full name of the produced file.
func exportProject(ctx context.Context, p *project.Project, format config.OutputFmt, ids []uint32, dst string, now time.Time, log *zap.Logger) (string, error) {
	env := state.EnvFromContext(ctx)

	order := p.Order()
	selected := epub.SelectIDs(order, ids)
	if len(selected) == 0 {
		return "", errors.New("nothing to export, no chapters selected")
	}
	if env.Debug() {
		if err := env.Rpt.StoreCopy(project.RecordName, filepath.Join(p.Dir(), project.RecordName)); err != nil {
			log.Warn("Unable to store project record in report", zap.Error(err))
		}
	}

	var chapters []*doc.Chapter
	for _, id := range selected {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		// RTF has nothing to say about missing chapters, EPUB keeps an empty page
		if format == config.OutputFmtRtf && !p.HasChapter(id) {
			log.Debug("Skipping missing chapter", zap.Uint32("id", id))
			continue
		}
		d, err := p.ReadChapter(id)
		if err != nil {
			return "", err
		}
		dumpTree(env, fmt.Sprintf("export-%d.txt", id), d)
		chapters = append(chapters, &doc.Chapter{ID: id, Title: p.ChapterTitle(id), Doc: d})
	}

	var name string
	switch format {
	case config.OutputFmtRtf:
		name = rtf.FileName(p.Title(), now, selected, len(order))
	case config.OutputFmtEpub:
		name = epub.FileName(p.Title(), now)
	default:
		// this should never happen
		panic("unsupported format requested")
	}

	out := buildOutputPath(name, dst, env)
	if _, err := os.Stat(out); err == nil && !env.Overwrite {
		return "", fmt.Errorf("%w: %s", ErrOutputExists, out)
	}

	switch format {
	case config.OutputFmtRtf:
		if err := os.MkdirAll(dst, 0755); err != nil {
			return "", fmt.Errorf("unable to create output directory: %w", err)
		}
		if err := os.WriteFile(out, rtf.Document(chapters), 0644); err != nil {
			return "", fmt.Errorf("unable to write output file: %w", err)
		}
	case config.OutputFmtEpub:
		req := &epub.Request{
			Title:     p.Title(),
			Author:    p.Author(),
			Font:      p.Font(),
			Chapters:  chapters,
			AssetsDir: filepath.Join(p.Dir(), assets.Dir),
			Now:       now,
		}
		if err := epub.Generate(ctx, req, out, &env.Cfg.Document, log); err != nil {
			return "", err
		}
	}
	return out, nil
}

// Import is the action of "import" command.
func Import(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("import")

	dir, err := projectDir(cmd)
	if err != nil {
		return err
	}
	sources := cmd.Args().Slice()[1:]
	if len(sources) == 0 {
		return errors.New("no input source has been specified")
	}

	p, err := project.Open(dir)
	if err != nil {
		return err
	}

	opts := project.ImportOptions{
		UseFileNameAsTitle: cmd.Bool("filename-titles"),
		Delimiter:          cmd.String("delimiter"),
		ExtractTitles:      cmd.Bool("extract-titles"),
	}

	log.Info("Import starting", zap.String("project", dir), zap.Strings("sources", sources))
	defer func(start time.Time) {
		log.Info("Import completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	res, err := project.Import(ctx, p, sources, opts, log)
	if res != nil && len(res.Chapters) > 0 {
		// chapters are already on disk, keep record in sync even on failure
		if serr := p.Save(); serr != nil {
			log.Error("Unable to save project record", zap.Error(serr))
		}
		for _, ch := range res.Chapters {
			dumpTree(env, fmt.Sprintf("import-%d.txt", ch.ID), ch.Doc)
			log.Info("Chapter added", zap.Uint32("id", ch.ID), zap.String("title", ch.Title))
		}
	}
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		log.Warn("Source skipped", zap.String("path", s))
	}

	if err := env.RememberProject(dir); err != nil {
		log.Warn("Unable to record last project", zap.Error(err))
	}
	return nil
}

func projectDir(cmd *cli.Command) (string, error) {
	dir := cmd.Args().Get(0)
	if len(dir) == 0 {
		return "", errors.New("no project directory has been specified")
	}
	return filepath.Abs(dir)
}

// parseIDs parses comma separated chapter ids, empty string means all.
func parseIDs(s string) ([]uint32, error) {
	var ids []uint32
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad chapter id %q: %w", part, err)
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

// dumpTree stores indented tree into debug report.
func dumpTree(env *state.LocalEnv, name string, d *doc.Document) {
	if !env.Debug() || d == nil {
		return
	}
	env.Rpt.StoreData(name, []byte(d.String()))
}
