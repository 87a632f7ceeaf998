// Package assets copies images into project asset directory and prepares
// them for the editor.
package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"scout/utils/images"
)

// Dir is asset directory name inside project.
const Dir = "assets"

// Options control optional processing of imported images.
type Options struct {
	// MaxWidth scales down wider raster images, 0 disables scaling.
	MaxWidth    int
	JPEGQuality int
}

// Result describes stored asset.
type Result struct {
	Name    string
	DataURL string
}

// MimeType returns image MIME type by file extension, unknown extensions are
// treated as JPEG.
func MimeType(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}

// SanitizeName replaces everything except ASCII letters, digits, '.', '-'
// and '_' with '_'.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (isAlnum(byte(r)) || r == '.' || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, name)
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// Import copies src into assets directory of the project under sanitized
// name. Name collisions are resolved by "_N" suffix before extension.
func Import(projectDir, src string, opts Options, log *zap.Logger) (*Result, error) {
	base := filepath.Base(src)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return nil, fmt.Errorf("invalid asset source path %q", src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to read image: %w", err)
	}
	checkContent(data, base, log)
	data = scaleDown(data, base, opts, log)

	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create assets directory: %w", err)
	}
	name, err := store(dir, SanitizeName(base), data)
	if err != nil {
		return nil, err
	}
	log.Debug("Asset stored", zap.String("source", src), zap.String("name", name), zap.Int("size", len(data)))

	return &Result{
		Name:    name,
		DataURL: "data:" + MimeType(name) + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// store creates new file under first free name.
func store(dir, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 0; ; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("unable to copy image: %w", err)
		}
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return "", fmt.Errorf("unable to copy image: %w", err)
		}
		return candidate, nil
	}
}

// checkContent only warns, asset is stored anyway.
func checkContent(data []byte, name string, log *zap.Logger) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		if MimeType(name) != "image/svg+xml" {
			log.Warn("Unable to recognize asset content", zap.String("file", name))
		}
		return
	}
	if !filetype.IsImage(data) {
		log.Warn("Asset does not look like an image", zap.String("file", name), zap.String("detected", kind.MIME.Value))
		return
	}
	if kind.MIME.Value != MimeType(name) {
		log.Warn("Asset content does not match its extension",
			zap.String("file", name), zap.String("detected", kind.MIME.Value), zap.String("expected", MimeType(name)))
	}
}

// scaleDown returns data unchanged unless image is decodable raster wider
// than allowed.
func scaleDown(data []byte, name string, opts Options, log *zap.Logger) []byte {
	if opts.MaxWidth <= 0 {
		return data
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.Debug("Not a raster image, leaving as is", zap.String("file", name), zap.Error(err))
		return data
	}
	if cfg.Width <= opts.MaxWidth {
		return data
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("Unable to decode image, leaving as is", zap.String("file", name), zap.Error(err))
		return data
	}
	scaled := imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	out, err := images.Encode(scaled, format, opts.JPEGQuality)
	if err != nil {
		if errors.Is(err, images.ErrUnsupported) {
			log.Debug("Unable to re-encode image, leaving as is", zap.String("file", name), zap.String("format", format))
		} else {
			log.Warn("Unable to re-encode image, leaving as is", zap.String("file", name), zap.Error(err))
		}
		return data
	}
	log.Debug("Image scaled down", zap.String("file", name),
		zap.Int("from", cfg.Width), zap.Int("to", scaled.Bounds().Dx()), zap.Int("size", len(out)))
	return out
}
