package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"scout/doc"
)

const chapterExt = ".json"

// ChapterPath returns location of chapter file, it may not exist.
func (p *Project) ChapterPath(id uint32) string {
	return filepath.Join(p.dir, ChaptersDir, key(id)+chapterExt)
}

// HasChapter reports whether chapter file exists.
func (p *Project) HasChapter(id uint32) bool {
	fi, err := os.Stat(p.ChapterPath(id))
	return err == nil && fi.Mode().IsRegular()
}

// ReadChapter returns chapter content. Missing or unparsable chapter file
// yields nil document and no error, other read failures are reported.
func (p *Project) ReadChapter(id uint32) (*doc.Document, error) {
	data, err := os.ReadFile(p.ChapterPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read chapter %d: %w", id, err)
	}
	d, err := doc.Decode(data)
	if err != nil {
		return nil, nil
	}
	return d, nil
}

// LoadChapters reads every chapter file in the project. Chapters follow
// record order, files not mentioned in the record come last in natural name
// order.
func (p *Project) LoadChapters() ([]*doc.Chapter, error) {
	entries, err := os.ReadDir(filepath.Join(p.dir, ChaptersDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to list chapters: %w", err)
	}

	type found struct {
		id   uint32
		name string
	}
	var files []found
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		stem, ok := strings.CutSuffix(e.Name(), chapterExt)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(stem, 10, 32)
		if err != nil {
			continue
		}
		files = append(files, found{id: uint32(id), name: e.Name()})
	}

	rank := func(id uint32) int {
		if i := slices.Index(p.order, id); i >= 0 {
			return i
		}
		return len(p.order)
	}
	slices.SortStableFunc(files, func(a, b found) int {
		ra, rb := rank(a.id), rank(b.id)
		switch {
		case ra != rb:
			return ra - rb
		case natural.Less(a.name, b.name):
			return -1
		case natural.Less(b.name, a.name):
			return 1
		}
		return 0
	})

	chapters := make([]*doc.Chapter, 0, len(files))
	for _, f := range files {
		d, err := p.ReadChapter(f.id)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, &doc.Chapter{ID: f.id, Title: p.ChapterTitle(f.id), Doc: d})
	}
	return chapters, nil
}

// WriteChapter stores chapter content.
func (p *Project) WriteChapter(id uint32, d *doc.Document) error {
	data, err := doc.Encode(d)
	if err != nil {
		return err
	}
	return p.writeChapterFile(id, data)
}

// WriteChapterJSON stores chapter content received as JSON. Data which does
// not decode as a document is rejected and nothing is written.
func (p *Project) WriteChapterJSON(id uint32, data []byte) error {
	if _, err := doc.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChapter, err)
	}
	return p.writeChapterFile(id, data)
}

func (p *Project) writeChapterFile(id uint32, data []byte) error {
	if err := os.MkdirAll(filepath.Join(p.dir, ChaptersDir), 0755); err != nil {
		return fmt.Errorf("unable to create chapters directory: %w", err)
	}
	if err := os.WriteFile(p.ChapterPath(id), data, 0644); err != nil {
		return fmt.Errorf("unable to write chapter %d: %w", id, err)
	}
	return nil
}

// Rename changes chapter title and saves record.
func (p *Project) Rename(id uint32, title string) error {
	p.SetChapterTitle(id, title)
	return p.Save()
}

// Delete removes chapter file and its record entries, then saves record.
// Missing file is not an error.
func (p *Project) Delete(id uint32) error {
	if err := os.Remove(p.ChapterPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to delete chapter %d: %w", id, err)
	}
	p.Remove(id)
	return p.Save()
}
