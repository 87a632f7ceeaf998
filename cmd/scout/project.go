package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"scout/assets"
	"scout/project"
	"scout/state"
)

func createProject(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	dir, err := projectArg(ctx, cmd, false)
	if err != nil {
		return err
	}
	title := cmd.String("title")
	if len(title) == 0 {
		title = filepath.Base(dir)
	}

	p, err := project.Create(dir, title)
	if err != nil {
		return err
	}
	if author := cmd.String("author"); len(author) > 0 {
		p.SetAuthor(author)
		if err := p.Save(); err != nil {
			return err
		}
	}
	env.Log.Info("Project created", zap.String("dir", dir), zap.String("title", title))
	return remember(env, dir)
}

func importAsset(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	dir, err := projectArg(ctx, cmd, false)
	if err != nil {
		return err
	}
	src := cmd.Args().Get(1)
	if len(src) == 0 {
		return errors.New("no image has been specified")
	}
	if _, err := project.Open(dir); err != nil {
		return err
	}

	opts := assets.Options{
		MaxWidth:    env.Cfg.Document.Images.MaxWidth,
		JPEGQuality: env.Cfg.Document.Images.JPEGQuality,
	}
	res, err := assets.Import(dir, src, opts, env.Log.Named("assets"))
	if err != nil {
		return err
	}
	env.Log.Info("Asset stored", zap.String("name", res.Name))

	out := res.Name
	if cmd.Bool("url") {
		out = res.DataURL
	}
	if _, err := fmt.Fprintln(cmd.Root().Writer, out); err != nil {
		return err
	}
	return remember(env, dir)
}

func renameChapter(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	p, id, err := chapterArgs(ctx, cmd)
	if err != nil {
		return err
	}
	title := cmd.Args().Get(2)
	if len(title) == 0 {
		return errors.New("no chapter title has been specified")
	}
	if err := p.Rename(id, title); err != nil {
		return err
	}
	env.Log.Info("Chapter renamed", zap.Uint32("id", id), zap.String("title", title))
	return remember(env, p.Dir())
}

func deleteChapter(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	p, id, err := chapterArgs(ctx, cmd)
	if err != nil {
		return err
	}
	if err := p.Delete(id); err != nil {
		return err
	}
	env.Log.Info("Chapter deleted", zap.Uint32("id", id))
	return remember(env, p.Dir())
}

func listChapters(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	dir, err := projectArg(ctx, cmd, true)
	if err != nil {
		return err
	}
	p, err := project.Open(dir)
	if err != nil {
		return err
	}
	chapters, err := p.LoadChapters()
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "%s\t%s\n", p.Title(), p.Author())
	for _, ch := range chapters {
		mark := ""
		if ch.Doc == nil {
			mark = "\t(unreadable)"
		}
		fmt.Fprintf(w, "%d\t%s%s\n", ch.ID, ch.Title, mark)
	}
	for _, id := range p.Order() {
		if !p.HasChapter(id) {
			fmt.Fprintf(w, "%d\t%s\t(missing)\n", id, p.ChapterTitle(id))
		}
	}
	return remember(env, dir)
}

// saveChapter replaces chapter content with JSON document taken from FILE or
// standard input. Chapter is added to the project order when it is new.
func saveChapter(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	p, id, err := chapterArgs(ctx, cmd)
	if err != nil {
		return err
	}

	var data []byte
	if fname := cmd.Args().Get(2); len(fname) > 0 && fname != "-" {
		data, err = os.ReadFile(fname)
	} else {
		in := cmd.Root().Reader
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	}
	if err != nil {
		return fmt.Errorf("unable to read chapter content: %w", err)
	}

	if err := p.WriteChapterJSON(id, data); err != nil {
		return err
	}
	if !slices.Contains(p.Order(), id) {
		p.Append(id)
		if err := p.Save(); err != nil {
			return err
		}
	}
	env.Log.Info("Chapter saved", zap.Uint32("id", id), zap.Int("bytes", len(data)))
	return remember(env, p.Dir())
}

func changeSettings(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	setFont, setExportDir := cmd.IsSet("font"), cmd.IsSet("export-dir")
	if (setFont || !setExportDir) && env.Settings == nil {
		return errors.New("user settings are not available")
	}

	if !setFont && !setExportDir {
		s, err := env.Settings.Load()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.Root().Writer, "last project: %s\nfont: %s\n", s.LastProjectPath, s.FontFamily)
		return nil
	}

	font := cmd.String("font")
	if setFont {
		s, err := env.Settings.Load()
		if err != nil {
			return err
		}
		s.FontFamily = font
		if err := env.Settings.Save(s); err != nil {
			return err
		}
		env.Log.Info("Font changed", zap.String("family", s.FontFamily))
	}

	if cmd.Args().Len() == 0 {
		if setExportDir {
			return errors.New("export directory is kept in project, no project directory has been specified")
		}
		return nil
	}
	dir, err := projectArg(ctx, cmd, false)
	if err != nil {
		return err
	}
	p, err := project.Open(dir)
	if err != nil {
		return err
	}
	if setFont {
		p.SetFont(font)
	}
	if setExportDir {
		exportDir := cmd.String("export-dir")
		if len(exportDir) > 0 {
			if exportDir, err = filepath.Abs(exportDir); err != nil {
				return err
			}
		}
		p.SetExportDir(exportDir)
		env.Log.Info("Export directory changed", zap.String("dir", exportDir))
	}
	if err := p.Save(); err != nil {
		return err
	}
	return remember(env, dir)
}

// projectArg returns absolute project directory from the first argument.
// When allowed, last used project is taken if argument is absent.
func projectArg(ctx context.Context, cmd *cli.Command, useLast bool) (string, error) {
	dir := cmd.Args().Get(0)
	if len(dir) == 0 && useLast {
		if env := state.EnvFromContext(ctx); env.Settings != nil {
			if s, err := env.Settings.Load(); err == nil {
				dir = s.LastProjectPath
			}
		}
	}
	if len(dir) == 0 {
		return "", errors.New("no project directory has been specified")
	}
	return filepath.Abs(dir)
}

func chapterArgs(ctx context.Context, cmd *cli.Command) (*project.Project, uint32, error) {
	dir, err := projectArg(ctx, cmd, false)
	if err != nil {
		return nil, 0, err
	}
	id, err := strconv.ParseUint(cmd.Args().Get(1), 10, 32)
	if err != nil {
		return nil, 0, fmt.Errorf("bad chapter id %q: %w", cmd.Args().Get(1), err)
	}
	p, err := project.Open(dir)
	if err != nil {
		return nil, 0, err
	}
	return p, uint32(id), nil
}

func remember(env *state.LocalEnv, dir string) error {
	if err := env.RememberProject(dir); err != nil {
		env.Log.Warn("Unable to record last project", zap.Error(err))
	}
	return nil
}
