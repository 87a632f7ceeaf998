// Package epub packages project chapters as EPUB 3 book with EPUB 2 NCX
// navigation for older readers.
package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"scout/assets"
	"scout/config"
	"scout/doc"
	"scout/state"
)

const (
	mimetypeContent = "application/epub+zip"
	oebpsDir        = "OEBPS"
	imagesDir       = "images"
	chaptersDir     = "chapters"
	stylesheetName  = "style.css"
)

// Request describes book to be generated. Chapters are in output order, a
// chapter with nil Doc produces an empty page.
type Request struct {
	Title     string
	Author    string
	Font      string
	Chapters  []*doc.Chapter
	AssetsDir string
	Now       time.Time
}

type chapterData struct {
	ID       string
	Filename string
	Title    string
}

// SelectIDs returns ids to export in canonical order: requested ids are
// filtered to those present in order, empty request means everything.
func SelectIDs(order, requested []uint32) []uint32 {
	if len(requested) == 0 {
		return append([]uint32(nil), order...)
	}
	want := make(map[uint32]struct{}, len(requested))
	for _, id := range requested {
		want[id] = struct{}{}
	}
	ids := make([]uint32, 0, len(requested))
	for _, id := range order {
		if _, ok := want[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FileName returns output file name for the book: title with everything
// outside of ASCII letters, digits, '-' and '_' replaced and export date.
func FileName(title string, date time.Time) string {
	return safeName(title) + "_" + date.Format(time.DateOnly) + ".epub"
}

// Generate creates the EPUB output file. Archive is assembled in memory and
// written with a single call.
func Generate(ctx context.Context, req *Request, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	log.Info("Generating EPUB", zap.String("title", req.Title), zap.Int("chapters", len(req.Chapters)), zap.String("output", outputPath))

	// text coming from project record ends up in XML as is
	meta := *req
	meta.Title, meta.Author = xmlText(req.Title), xmlText(req.Author)
	req = &meta

	id, err := packageID(cfg.Identifier, req.Title, now)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeMimetype(zw); err != nil {
		return fmt.Errorf("unable to write mimetype: %w", err)
	}
	if err := writeContainer(zw); err != nil {
		return fmt.Errorf("unable to write container: %w", err)
	}
	if err := writeStylesheet(zw, env.DefaultStyle, req.Font); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}

	var names []string
	for _, ch := range req.Chapters {
		names = doc.ImageNames(ch.Doc, names)
	}
	images, err := writeImages(zw, req.AssetsDir, names, log)
	if err != nil {
		return fmt.Errorf("unable to write images: %w", err)
	}

	chapters := make([]chapterData, 0, len(req.Chapters))
	for i, ch := range req.Chapters {
		if err := ctx.Err(); err != nil {
			return err
		}
		cd := chapterData{
			ID:       fmt.Sprintf("ch%03d", i+1),
			Filename: fmt.Sprintf("%s/ch%03d.xhtml", chaptersDir, i+1),
			Title:    xmlText(ch.Title),
		}
		page, err := chapterPage(cd.Title, ch.Blocks())
		if err != nil {
			return fmt.Errorf("unable to render chapter %d: %w", ch.ID, err)
		}
		if err := writeXMLToZip(zw, path.Join(oebpsDir, cd.Filename), page); err != nil {
			return fmt.Errorf("unable to write chapter %d: %w", ch.ID, err)
		}
		chapters = append(chapters, cd)
	}

	if err := writeNav(zw, req.Title, chapters); err != nil {
		return fmt.Errorf("unable to write NAV: %w", err)
	}
	if err := writeNCX(zw, req.Title, id, chapters); err != nil {
		return fmt.Errorf("unable to write NCX: %w", err)
	}
	if err := writeOPF(zw, req, id, now, cfg, chapters, images); err != nil {
		return fmt.Errorf("unable to write OPF: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}

	data := buf.Bytes()
	if cfg.FixZip {
		if data, err = withoutDataDescriptors(data); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	return nil
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeMimetype(zw *zip.Writer) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, mimetypeContent)
	return err
}

func writeContainer(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", path.Join(oebpsDir, "content.opf"))
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")

	return writeXMLToZip(zw, "META-INF/container.xml", doc)
}

func writeStylesheet(zw *zip.Writer, css []byte, font string) error {
	data := bytes.Clone(css)
	if font = strings.NewReplacer(`"`, "", `\`, "").Replace(strings.TrimSpace(font)); font != "" {
		data = fmt.Appendf(data, "\nbody { font-family: \"%s\", serif; }\n", font)
	}
	return writeDataToZip(zw, path.Join(oebpsDir, stylesheetName), data)
}

// writeImages embeds referenced assets, names which do not exist in assets
// directory are skipped. It returns names actually written.
func writeImages(zw *zip.Writer, assetsDir string, names []string, log *zap.Logger) ([]string, error) {
	written := make([]string, 0, len(names))
	for _, name := range names {
		if filepath.Base(name) != name || name == "." || name == ".." {
			log.Warn("Ignoring image with unexpected name", zap.String("name", name))
			continue
		}
		data, err := os.ReadFile(filepath.Join(assetsDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("Referenced image not found, skipping", zap.String("name", name))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read image %s: %w", name, err)
		}
		if err := writeDataToZip(zw, path.Join(oebpsDir, imagesDir, name), data); err != nil {
			return nil, fmt.Errorf("unable to write image %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}

func writeOPF(zw *zip.Writer, req *Request, id string, now time.Time, cfg *config.DocumentConfig, chapters []chapterData, images []string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("version", "3.0")
	pkg.CreateAttr("unique-identifier", "book-id")

	metadata := pkg.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")

	dcIdentifier := metadata.CreateElement("dc:identifier")
	dcIdentifier.CreateAttr("id", "book-id")
	dcIdentifier.SetText("urn:uuid:" + id)

	metadata.CreateElement("dc:title").SetText(req.Title)
	if req.Author != "" {
		metadata.CreateElement("dc:creator").SetText(req.Author)
	}

	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	metadata.CreateElement("dc:language").SetText(lang)

	modified := metadata.CreateElement("meta")
	modified.CreateAttr("property", "dcterms:modified")
	modified.SetText(now.UTC().Format("2006-01-02T15:04:05Z"))

	manifest := pkg.CreateElement("manifest")
	addItem := func(id, href, mediaType string) *etree.Element {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", id)
		item.CreateAttr("href", href)
		item.CreateAttr("media-type", mediaType)
		return item
	}
	addItem("nav", "nav.xhtml", "application/xhtml+xml").CreateAttr("properties", "nav")
	addItem("ncx", "toc.ncx", "application/x-dtbncx+xml")
	addItem("css", stylesheetName, "text/css")
	for _, ch := range chapters {
		addItem(ch.ID, ch.Filename, "application/xhtml+xml")
	}
	for i, iid := range imageIDs(images) {
		addItem(iid, path.Join(imagesDir, images[i]), assets.MimeType(images[i]))
	}

	spine := pkg.CreateElement("spine")
	spine.CreateAttr("toc", "ncx")
	for _, ch := range chapters {
		spine.CreateElement("itemref").CreateAttr("idref", ch.ID)
	}

	return writeXMLToZip(zw, path.Join(oebpsDir, "content.opf"), doc)
}

func writeNav(zw *zip.Writer, title string, chapters []chapterData) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")

	html.CreateElement("head").CreateElement("title").SetText(title)

	nav := html.CreateElement("body").CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateElement("h1").SetText(title)

	ol := nav.CreateElement("ol")
	for _, ch := range chapters {
		a := ol.CreateElement("li").CreateElement("a")
		a.CreateAttr("href", ch.Filename)
		a.SetText(ch.Title)
	}

	return writeXMLToZip(zw, path.Join(oebpsDir, "nav.xhtml"), doc)
}

func writeNCX(zw *zip.Writer, title, id string, chapters []chapterData) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")

	head := ncx.CreateElement("head")
	for _, m := range [][2]string{
		{"dtb:uid", "urn:uuid:" + id},
		{"dtb:depth", "1"},
		{"dtb:totalPageCount", "0"},
		{"dtb:maxPageNumber", "0"},
	} {
		meta := head.CreateElement("meta")
		meta.CreateAttr("name", m[0])
		meta.CreateAttr("content", m[1])
	}

	ncx.CreateElement("docTitle").CreateElement("text").SetText(title)

	navMap := ncx.CreateElement("navMap")
	for i, ch := range chapters {
		navPoint := navMap.CreateElement("navPoint")
		navPoint.CreateAttr("id", ch.ID)
		navPoint.CreateAttr("playOrder", fmt.Sprintf("%d", i+1))
		navPoint.CreateElement("navLabel").CreateElement("text").SetText(ch.Title)
		navPoint.CreateElement("content").CreateAttr("src", ch.Filename)
	}

	return writeXMLToZip(zw, path.Join(oebpsDir, "toc.ncx"), doc)
}

// withoutDataDescriptors re-writes archive clearing data descriptor flag on
// every entry, some readers cannot handle them.
func withoutDataDescriptors(data []byte) ([]byte, error) {
	r, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to read archive: %w", err)
	}

	var out bytes.Buffer
	w := fixzip.NewWriter(&out)
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return nil, fmt.Errorf("unable to rewrite archive entry (%s): %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize archive: %w", err)
	}
	return out.Bytes(), nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (isASCIIAlnum(byte(r)) || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, s)
}

func isASCIIAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func imageID(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, name)
}

// imageIDs returns manifest ids for image names, different names may map to
// the same id so repeats get numeric suffix.
func imageIDs(names []string) []string {
	ids := make([]string, 0, len(names))
	used := make(map[string]struct{}, len(names))
	for _, name := range names {
		base := "img-" + imageID(name)
		id := base
		for n := 2; ; n++ {
			if _, ok := used[id]; !ok {
				break
			}
			id = fmt.Sprintf("%s-%d", base, n)
		}
		used[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
