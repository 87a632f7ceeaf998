// Package images re-encodes scaled raster images.
package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// DensityUnits is JFIF density unit code.
type DensityUnits uint8

const (
	DensityNoUnits DensityUnits = iota
	DensityPerInch
	DensityPerCm
)

// Density describes pixel density written into JFIF header.
type Density struct {
	Units DensityUnits
	X, Y  uint16
}

// DefaultDensity is used for re-encoded images.
var DefaultDensity = Density{Units: DensityPerInch, X: 72, Y: 72}

var (
	soi       = []byte{0xFF, 0xD8}
	app0      = []byte{0xFF, 0xE0}
	jfifIdent = []byte{'J', 'F', 'I', 'F', 0x00, 0x01, 0x02}
)

// WithJFIF returns JPEG data starting with JFIF APP0 segment. Go encoder
// does not write one and some readers refuse such files. Second result tells
// whether segment has been inserted.
func WithJFIF(data []byte, d Density) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if !bytes.Equal(data[:2], soi) {
		return nil, false, errors.New("not a jpeg")
	}
	if bytes.Equal(data[2:4], app0) {
		return data, false, nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(data)+18))
	buf.Write(soi)
	buf.Write(app0)
	_ = binary.Write(buf, binary.BigEndian, uint16(16)) // segment length
	buf.Write(jfifIdent)
	buf.WriteByte(byte(d.Units))
	_ = binary.Write(buf, binary.BigEndian, d.X)
	_ = binary.Write(buf, binary.BigEndian, d.Y)
	buf.Write([]byte{0, 0}) // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes(), true, nil
}

// Encode writes img in the format image.Decode reported for the source.
// JPEG gets requested quality and JFIF header. Formats imaging cannot write
// (webp) return ErrUnsupported.
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	var (
		f    imaging.Format
		opts []imaging.EncodeOption
	)
	switch format {
	case "jpeg":
		f, opts = imaging.JPEG, []imaging.EncodeOption{imaging.JPEGQuality(quality)}
	case "png":
		f, opts = imaging.PNG, []imaging.EncodeOption{imaging.PNGCompressionLevel(png.BestCompression)}
	case "gif":
		f = imaging.GIF
	case "bmp":
		f = imaging.BMP
	case "tiff":
		f = imaging.TIFF
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, format)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, f, opts...); err != nil {
		return nil, fmt.Errorf("unable to encode %s: %w", format, err)
	}
	if f != imaging.JPEG {
		return buf.Bytes(), nil
	}
	out, _, err := WithJFIF(buf.Bytes(), DefaultDensity)
	return out, err
}

// ErrUnsupported is returned for formats which can be decoded but not
// encoded.
var ErrUnsupported = errors.New("unsupported image format")
