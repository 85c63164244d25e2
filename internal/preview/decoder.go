package preview

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // register BMP
	"golang.org/x/image/draw"

	"github.com/justyntemme/glance/internal/errors"
)

// DefaultFrame is the preview area a thumbnail must fit in.
var DefaultFrame = image.Pt(250, 160)

// DefaultMaxImagePixels caps the decoded bitmap (width*height) of a
// thumbnail source. A 40 MP RGBA bitmap is about 160 MB.
const DefaultMaxImagePixels = 40_000_000

// Thumbnail is a decoded image scaled to fit a preview frame.
type Thumbnail struct {
	Image    image.Image
	Original image.Point // dimensions before scaling
}

// Size returns the thumbnail dimensions.
func (t *Thumbnail) Size() image.Point {
	return t.Image.Bounds().Size()
}

// WritePNG encodes the thumbnail as PNG.
func (t *Thumbnail) WritePNG(w io.Writer) error {
	return png.Encode(w, t.Image)
}

// ImageDecoder turns encoded image bytes into a thumbnail that fits frame.
// Failures are reported as DecodeFailure errors.
type ImageDecoder interface {
	Decode(data []byte, frame image.Point) (*Thumbnail, error)
}

// ImagingDecoder scales with disintegration/imaging. The zero value uses
// the Lanczos filter and DefaultMaxImagePixels.
type ImagingDecoder struct {
	Filter *imaging.ResampleFilter
	// MaxPixels rejects larger images before decoding; 0 means
	// DefaultMaxImagePixels, < 0 means no limit.
	MaxPixels int64
}

func (d ImagingDecoder) Decode(data []byte, frame image.Point) (*Thumbnail, error) {
	img, err := decodeImage(data, d.MaxPixels)
	if err != nil {
		return nil, err
	}
	filter := imaging.Lanczos
	if d.Filter != nil {
		filter = *d.Filter
	}
	size := img.Bounds().Size()
	if size.X <= frame.X && size.Y <= frame.Y {
		return &Thumbnail{Image: img, Original: size}, nil
	}
	return &Thumbnail{
		Image:    imaging.Fit(img, frame.X, frame.Y, filter),
		Original: size,
	}, nil
}

// ScaleDecoder scales with golang.org/x/image/draw. A nil Scaler uses
// CatmullRom.
type ScaleDecoder struct {
	Scaler    draw.Scaler
	MaxPixels int64 // as in ImagingDecoder
}

func (d ScaleDecoder) Decode(data []byte, frame image.Point) (*Thumbnail, error) {
	img, err := decodeImage(data, d.MaxPixels)
	if err != nil {
		return nil, err
	}
	scaler := d.Scaler
	if scaler == nil {
		scaler = draw.CatmullRom
	}

	bounds := img.Bounds()
	fit := fitWithin(bounds.Size(), frame)
	if fit == bounds.Size() {
		return &Thumbnail{Image: img, Original: bounds.Size()}, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, fit.X, fit.Y))
	scaler.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return &Thumbnail{Image: dst, Original: bounds.Size()}, nil
}

// NewDecoder returns the decoder for a resampler name: "lanczos" (default)
// or "catmullrom". maxPixels is passed through as MaxPixels.
func NewDecoder(resampler string, maxPixels int64) ImageDecoder {
	if resampler == "catmullrom" {
		return ScaleDecoder{MaxPixels: maxPixels}
	}
	return ImagingDecoder{MaxPixels: maxPixels}
}

// Dimensions reads only the image header.
func Dimensions(data []byte) (image.Point, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Point{}, errors.Wrap(err, errors.DecodeFailure, "decode", "")
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

func decodeImage(data []byte, maxPixels int64) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.DecodeFailure, "empty image data")
	}
	if maxPixels == 0 {
		maxPixels = DefaultMaxImagePixels
	}
	if maxPixels > 0 {
		size, err := Dimensions(data)
		if err != nil {
			return nil, err
		}
		if int64(size.X)*int64(size.Y) > maxPixels {
			return nil, errors.Newf(errors.DecodeFailure,
				"image too large to preview: %dx%d pixels (limit %d)", size.X, size.Y, maxPixels)
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.DecodeFailure, "decode", "")
	}
	return img, nil
}

// fitWithin scales size down to fit frame, preserving aspect ratio. Images
// already inside the frame are left alone.
func fitWithin(size, frame image.Point) image.Point {
	if size.X <= frame.X && size.Y <= frame.Y {
		return size
	}
	scale := float64(frame.X) / float64(size.X)
	if s := float64(frame.Y) / float64(size.Y); s < scale {
		scale = s
	}
	w := int(float64(size.X)*scale + 0.5)
	h := int(float64(size.Y)*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Pt(w, h)
}
