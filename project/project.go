// Package project manages project directory: its record (project.json) and
// chapter files under chapters/.
package project

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/bitly/go-simplejson"
)

const (
	RecordName  = "project.json"
	ChaptersDir = "chapters"
)

var (
	ErrMalformedProject = errors.New("malformed project record")
	ErrInvalidChapter   = errors.New("invalid chapter content")
)

// Project is an opened project directory. Record fields the program does not
// know about are kept intact when record is saved.
type Project struct {
	dir    string
	rec    *simplejson.Json
	title  string
	author string
	order  []uint32
	titles map[string]string
}

// Create initializes new project in dir, which is created when missing.
// Existing record is never overwritten.
func Create(dir, title string) (*Project, error) {
	if err := os.MkdirAll(filepath.Join(dir, ChaptersDir), 0755); err != nil {
		return nil, fmt.Errorf("unable to create project directory: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, RecordName)); err == nil {
		return nil, fmt.Errorf("project already exists in %s", dir)
	}
	p := &Project{
		dir:    dir,
		rec:    simplejson.New(),
		title:  title,
		order:  []uint32{},
		titles: map[string]string{},
	}
	if err := p.Save(); err != nil {
		return nil, err
	}
	return p, nil
}

// Open loads project record from dir.
func Open(dir string) (*Project, error) {
	path := filepath.Join(dir, RecordName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read project record: %w", err)
	}
	rec, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedProject, path, err)
	}
	p := &Project{dir: dir, rec: rec, titles: map[string]string{}}
	if err := p.parse(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedProject, path, err)
	}
	return p, nil
}

func (p *Project) parse() error {
	if _, err := p.rec.Map(); err != nil {
		return errors.New("record is not an object")
	}

	var err error
	if p.title, err = requiredString(p.rec, "title"); err != nil {
		return err
	}
	if p.author, err = requiredString(p.rec, "author"); err != nil {
		return err
	}

	v, ok := p.rec.CheckGet("chapterOrder")
	if !ok {
		return errors.New("chapterOrder is missing")
	}
	arr, err := v.Array()
	if err != nil {
		return errors.New("chapterOrder is not an array")
	}
	p.order = make([]uint32, 0, len(arr))
	for i := range arr {
		n, err := v.GetIndex(i).Int64()
		if err != nil || n < 0 || n > math.MaxUint32 {
			return fmt.Errorf("chapterOrder[%d] is not a chapter id", i)
		}
		p.order = append(p.order, uint32(n))
	}

	// titles are advisory, entries of unexpected shape are ignored
	if v, ok := p.rec.CheckGet("chapterTitles"); ok {
		m, _ := v.Map()
		for k, t := range m {
			if s, ok := t.(string); ok {
				p.titles[k] = s
			}
		}
	}
	return nil
}

func requiredString(rec *simplejson.Json, key string) (string, error) {
	v, ok := rec.CheckGet(key)
	if !ok {
		return "", fmt.Errorf("%s is missing", key)
	}
	s, err := v.String()
	if err != nil {
		return "", fmt.Errorf("%s is not a string", key)
	}
	return s, nil
}

// Save writes record back, pretty printed.
func (p *Project) Save() error {
	p.rec.Set("title", p.title)
	p.rec.Set("author", p.author)
	p.rec.Set("chapterOrder", p.order)
	if _, ok := p.rec.CheckGet("chapterTitles"); ok || len(p.titles) > 0 {
		p.rec.Set("chapterTitles", p.titles)
	}

	data, err := p.rec.EncodePretty()
	if err != nil {
		return fmt.Errorf("unable to encode project record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.dir, RecordName), data, 0644); err != nil {
		return fmt.Errorf("unable to write project record: %w", err)
	}
	return nil
}

func (p *Project) Dir() string    { return p.dir }
func (p *Project) Title() string  { return p.title }
func (p *Project) Author() string { return p.author }

func (p *Project) SetAuthor(author string) { p.author = author }

// Order returns copy of chapter order.
func (p *Project) Order() []uint32 {
	return slices.Clone(p.order)
}

// ChapterTitle returns recorded title of chapter or "Chapter <id>".
func (p *Project) ChapterTitle(id uint32) string {
	if t, ok := p.titles[key(id)]; ok {
		return t
	}
	return "Chapter " + key(id)
}

// ChapterTitles returns all recorded titles.
func (p *Project) ChapterTitles() []string {
	out := make([]string, 0, len(p.titles))
	for _, t := range p.titles {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (p *Project) SetChapterTitle(id uint32, title string) {
	p.titles[key(id)] = title
}

// Append adds id to the end of chapter order unless it is already there.
func (p *Project) Append(id uint32) {
	if !slices.Contains(p.order, id) {
		p.order = append(p.order, id)
	}
}

// Remove drops chapter from order and titles.
func (p *Project) Remove(id uint32) {
	p.order = slices.DeleteFunc(p.order, func(v uint32) bool { return v == id })
	delete(p.titles, key(id))
}

// MaxID returns the largest id in chapter order, 0 for empty project.
func (p *Project) MaxID() uint32 {
	if len(p.order) == 0 {
		return 0
	}
	return slices.Max(p.order)
}

// Font returns font family recorded for the project, if any.
func (p *Project) Font() string {
	return p.rec.Get("fontFamily").MustString()
}

func (p *Project) SetFont(family string) {
	p.setOrDelete("fontFamily", family)
}

func (p *Project) ExportDir() string {
	return p.rec.Get("exportDir").MustString()
}

func (p *Project) SetExportDir(dir string) {
	p.setOrDelete("exportDir", dir)
}

// DefaultExportDir is recorded export directory or parent of the project
// directory.
func (p *Project) DefaultExportDir() string {
	if dir := p.ExportDir(); dir != "" {
		return dir
	}
	abs, err := filepath.Abs(p.dir)
	if err != nil {
		abs = p.dir
	}
	return filepath.Dir(abs)
}

func (p *Project) setOrDelete(k, v string) {
	if v == "" {
		p.rec.Del(k)
		return
	}
	p.rec.Set(k, v)
}

func key(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
