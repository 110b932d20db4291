package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"AuthentiGo/pkg/models"
)

// DecodeError reports bytes that could not be interpreted as a raster image
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConversionError reports a raster that could not be turned into a grayscale matrix
type ConversionError struct {
	Reason string
}

func (e *ConversionError) Error() string {
	return "grayscale conversion: " + e.Reason
}

// IsAnalysisError reports whether err means the image cannot be analyzed
func IsAnalysisError(err error) bool {
	var de *DecodeError
	var ce *ConversionError
	return errors.As(err, &de) || errors.As(err, &ce)
}

// Image is a decoded raster together with what is known about its metadata
type Image struct {
	Format   string
	Width    int
	Height   int
	Metadata models.MetadataStatus

	raster image.Image
}

// DefaultMaxPixels caps width*height before a raster is allocated
const DefaultMaxPixels = 178956970

// ErrTooManyPixels is wrapped by the DecodeError for oversized rasters
var ErrTooManyPixels = errors.New("image exceeds pixel limit")

// Decode decodes data with every registered decoder, refusing rasters
// larger than DefaultMaxPixels.
// Metadata is left as MetadataAbsent; callers probe it separately.
func Decode(data []byte) (*Image, error) {
	return DecodeLimit(data, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel cap; maxPixels <= 0 means DefaultMaxPixels.
// The header is checked with image.DecodeConfig before any pixel is decoded.
func DecodeLimit(data []byte, maxPixels int64) (*Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %dx%d is %d pixels (max %d)",
			ErrTooManyPixels, cfg.Width, cfg.Height, pixels, maxPixels)}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return FromImage(img, format), nil
}

// FromImage wraps an already decoded raster
func FromImage(img image.Image, format string) *Image {
	out := &Image{Format: format, raster: img}
	if img != nil {
		b := img.Bounds()
		out.Width, out.Height = b.Dx(), b.Dy()
	}
	return out
}

// Raster returns the underlying decoded image
func (i *Image) Raster() image.Image {
	return i.raster
}

// Grayscale converts the raster to a single-channel intensity matrix
func (i *Image) Grayscale() (*Gray, error) {
	if i == nil || i.raster == nil {
		return nil, &ConversionError{Reason: "no raster"}
	}
	return ToGray(i.raster)
}

// Gray is a row-major 8-bit intensity matrix
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a zeroed matrix
func NewGray(width, height int) *Gray {
	return &Gray{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the intensity at column x, row y
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores the intensity at column x, row y
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Len returns the pixel count
func (g *Gray) Len() int {
	return g.Width * g.Height
}

// ToGray converts any image.Image to ITU-R 601 luma, the weights of
// color.GrayModel. Luma is taken from the straight (non-premultiplied) color
// channels and alpha is dropped, so transparency never darkens a pixel.
// Red and blue carry their standard weights; images stored as RGB are not
// reinterpreted as BGR, so color images score differently from tools that do.
func ToGray(img image.Image) (*Gray, error) {
	if img == nil {
		return nil, &ConversionError{Reason: "nil image"}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, &ConversionError{Reason: fmt.Sprintf("empty raster %dx%d", width, height)}
	}

	g := NewGray(width, height)

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < height; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(g.Pix[y*width:(y+1)*width], src.Pix[off:off+width])
		}
		return g, nil

	case *image.NRGBA:
		for y := 0; y < height; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := 0; x < width; x++ {
				i := off + 4*x
				g.Pix[y*width+x] = luma(uint32(src.Pix[i])*0x101, uint32(src.Pix[i+1])*0x101, uint32(src.Pix[i+2])*0x101)
			}
		}
		return g, nil

	case *image.NRGBA64:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c := src.NRGBA64At(bounds.Min.X+x, bounds.Min.Y+y)
				g.Pix[y*width+x] = luma(uint32(c.R), uint32(c.G), uint32(c.B))
			}
		}
		return g, nil

	case *image.Paletted:
		lut := make([]uint8, len(src.Palette))
		for i, c := range src.Palette {
			lut[i] = straightLuma(c)
		}
		for y := 0; y < height; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := 0; x < width; x++ {
				idx := int(src.Pix[off+x])
				if idx < len(lut) {
					g.Pix[y*width+x] = lut[idx]
				}
			}
		}
		return g, nil
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g.Set(x-bounds.Min.X, y-bounds.Min.Y, straightLuma(img.At(x, y)))
		}
	}

	return g, nil
}

// straightLuma returns the luma of c's un-premultiplied channels
func straightLuma(c color.Color) uint8 {
	switch v := c.(type) {
	case color.NRGBA:
		return luma(uint32(v.R)*0x101, uint32(v.G)*0x101, uint32(v.B)*0x101)
	case color.NRGBA64:
		return luma(uint32(v.R), uint32(v.G), uint32(v.B))
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return luma(uint32(n.R), uint32(n.G), uint32(n.B))
}

// luma weights 16-bit channels exactly like color.GrayModel
func luma(r, g, b uint32) uint8 {
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}
