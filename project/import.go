package project

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"scout/archive"
	"scout/content"
	"scout/doc"
)

// ImportOptions controls how imported files are broken into chapters.
type ImportOptions struct {
	// UseFileNameAsTitle names single section chapters after file stem.
	UseFileNameAsTitle bool
	// Delimiter, when not empty, splits every file at lines starting with it.
	Delimiter string
	// ExtractTitles takes chapter titles from delimiter lines.
	ExtractTitles bool
}

// ImportResult describes chapters created by Import. Order and Titles
// reflect project record after import, record itself is not saved.
type ImportResult struct {
	Chapters []*doc.Chapter
	Order    []uint32
	Titles   map[uint32]string
	// Skipped lists sources and archive entries which were not imported.
	Skipped []string
}

// source is a single importable text found among Import arguments.
type source struct {
	name string // used for extension and title, slash separated inside archives
	read func() ([]byte, error)
}

// Import converts text and markdown files into new chapters of p. Sources
// could be files, directories or zip archives, directories and archives are
// visited in natural name order. Chapters are written as soon as they are
// converted, on error already written chapters stay and are reported in
// result.
func Import(ctx context.Context, p *Project, sources []string, opts ImportOptions, log *zap.Logger) (*ImportResult, error) {
	res := &ImportResult{Titles: make(map[uint32]string)}

	var found []source
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		items, skipped, err := collect(src, log)
		if err != nil {
			return res, err
		}
		found = append(found, items...)
		res.Skipped = append(res.Skipped, skipped...)
	}

	used := content.NewTitleSet(p.ChapterTitles()...)
	next := p.MaxID() + 1

	for _, src := range found {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		data, err := src.read()
		if err != nil {
			return res, fmt.Errorf("unable to read %s: %w", src.name, err)
		}
		text, err := content.DecodeText(data)
		if err != nil {
			return res, fmt.Errorf("unable to decode %s: %w", src.name, err)
		}

		markdown := strings.EqualFold(path.Ext(src.name), ".md")
		for _, sec := range sections(text, src.name, next, opts) {
			title := used.Unique(sec.Title)

			var d *doc.Document
			if markdown {
				d = content.FromMarkdown([]byte(sec.Content))
			} else {
				d = content.FromText(sec.Content)
			}
			if err := p.WriteChapter(next, d); err != nil {
				return res, err
			}
			p.Append(next)
			p.SetChapterTitle(next, title)

			log.Debug("Chapter imported", zap.String("from", src.name), zap.Uint32("id", next), zap.String("title", title))
			res.Chapters = append(res.Chapters, &doc.Chapter{ID: next, Title: title, Doc: d})
			next++
		}
	}

	res.Order = p.Order()
	for _, id := range res.Order {
		res.Titles[id] = p.ChapterTitle(id)
	}
	return res, nil
}

func sections(text, name string, next uint32, opts ImportOptions) []content.Section {
	if opts.Delimiter != "" {
		return content.Split(text, opts.Delimiter, opts.ExtractTitles)
	}
	title := fmt.Sprintf("Chapter %d", next)
	if opts.UseFileNameAsTitle {
		base := path.Base(filepath.ToSlash(name))
		if stem := strings.TrimSuffix(base, path.Ext(base)); stem != "" {
			title = stem
		}
	}
	return []content.Section{{Title: title, Content: text}}
}

func importable(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// collect expands single Import argument into list of sources.
func collect(src string, log *zap.Logger) ([]source, []string, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, nil, fmt.Errorf("input source was not found: %w", err)
	}

	if fi.IsDir() {
		return collectDir(src, log)
	}
	if !fi.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("unexpected path mode for %s", src)
	}
	if importable(src) {
		return []source{fileSource(src)}, nil, nil
	}

	isZip, err := archive.IsArchive(src)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to check archive type: %w", err)
	}
	if isZip {
		return collectArchive(src, log)
	}
	log.Debug("Skipping file, not recognized as text or archive", zap.String("file", src))
	return nil, []string{src}, nil
}

func collectDir(dir string, log *zap.Logger) (items []source, skipped []string, err error) {
	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			skipped = append(skipped, path)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !importable(path) {
			log.Debug("Skipping file, not recognized as text", zap.String("file", path))
			skipped = append(skipped, path)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slices.SortStableFunc(paths, naturalCmp)
	for _, p := range paths {
		items = append(items, fileSource(p))
	}
	if len(items) == 0 {
		log.Debug("Nothing to import", zap.String("dir", dir))
	}
	return items, skipped, nil
}

func collectArchive(name string, log *zap.Logger) (items []source, skipped []string, err error) {
	unsafe, err := archive.Walk(name, "", func(arc string, f *zip.File) error {
		entry := f.FileHeader.Name
		if !importable(entry) {
			log.Debug("Skipping file in archive, not recognized as text", zap.String("archive", arc), zap.String("file", entry))
			skipped = append(skipped, arc+":"+entry)
			return nil
		}
		// archive is closed when walk is over, entries are read right away
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("unable to open %s: %w", entry, err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", entry, err)
		}
		items = append(items, source{name: entry, read: func() ([]byte, error) { return data, nil }})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to process archive: %w", err)
	}
	for _, e := range unsafe {
		log.Warn("Skipping unsafe archive entry", zap.String("archive", name), zap.String("file", e))
		skipped = append(skipped, name+":"+e)
	}
	return items, skipped, nil
}

func fileSource(name string) source {
	return source{name: name, read: func() ([]byte, error) { return os.ReadFile(name) }}
}

func naturalCmp(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}
