package exif

import (
	"bytes"
	"errors"
	"fmt"

	goexif "github.com/rwcarlsen/goexif/exif"

	"AuthentiGo/pkg/extractor"
	"AuthentiGo/pkg/models"
)

// captureFields are the tags reported back and, for bare TIFF files,
// the tags whose presence counts as capture metadata
var captureFields = []goexif.FieldName{
	goexif.Make,
	goexif.Model,
	goexif.DateTimeOriginal,
	goexif.DateTime,
	goexif.Software,
	goexif.Artist,
}

// EXIFExtractor finds EXIF capture metadata in JPEG, PNG, WebP and TIFF files
type EXIFExtractor struct {
	extractor.BaseExtractor
}

// NewEXIFExtractor creates a new EXIF extractor
func NewEXIFExtractor() *EXIFExtractor {
	return &EXIFExtractor{
		BaseExtractor: extractor.NewBaseExtractor(
			"EXIF Extractor",
			[]string{"jpeg", "png", "webp", "tiff"},
		),
	}
}

// Extract implements the MetadataExtractor interface
func (e *EXIFExtractor) Extract(format string, data []byte) extractor.Report {
	var (
		payload   []byte
		container string
		err       error
	)

	switch format {
	case "jpeg":
		container = "APP1"
		payload, err = findJPEGExif(data)
	case "png":
		container = "eXIf"
		payload, err = findPNGExif(data)
	case "webp":
		container = "EXIF"
		payload, err = findWebPExif(data)
	case "tiff":
		return e.extractTIFF(data)
	default:
		return e.Unreadable(fmt.Errorf("unsupported format %q", format))
	}

	if err != nil {
		return e.Unreadable(fmt.Errorf("read %s container: %w", format, err))
	}
	if payload == nil {
		return e.Absent()
	}

	x, err := decodePayload(payload)
	if err != nil {
		return e.Unreadable(err)
	}

	return extractor.Report{
		Status:    models.MetadataPresent,
		Extractor: e.Name(),
		Container: container,
		Size:      len(payload),
		Tags:      captureTags(x),
	}
}

// extractTIFF treats the whole file as the EXIF stream; only capture tags count
func (e *EXIFExtractor) extractTIFF(data []byte) extractor.Report {
	x, err := decodePayload(data)
	if err != nil {
		return e.Unreadable(err)
	}

	tags := captureTags(x)
	if len(tags) == 0 {
		return e.Absent()
	}

	return extractor.Report{
		Status:    models.MetadataPresent,
		Extractor: e.Name(),
		Container: "IFD0",
		Size:      len(data),
		Tags:      tags,
	}
}

func decodePayload(payload []byte) (*goexif.Exif, error) {
	if !hasTIFFHeader(payload) {
		return nil, errors.New("exif payload has no TIFF header")
	}

	x, err := goexif.Decode(bytes.NewReader(payload))
	if err != nil && goexif.IsCriticalError(err) {
		return nil, fmt.Errorf("decode exif: %w", err)
	}
	if x == nil {
		return nil, errors.New("decode exif: no data")
	}

	return x, nil
}

func captureTags(x *goexif.Exif) map[string]string {
	tags := make(map[string]string)
	for _, name := range captureFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		if v, err := tag.StringVal(); err == nil {
			tags[string(name)] = v
		} else {
			tags[string(name)] = tag.String()
		}
	}
	return tags
}
