// Package testutil builds in-memory image fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Uniform returns a w x h image filled with a single gray level
func Uniform(w, h int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

// Noise returns a w x h RGBA image of seeded random pixels
func Noise(seed int64, w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

// EncodePNG encodes img as PNG
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// EncodeJPEG encodes img as a baseline JPEG
func EncodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// MinimalTIFF returns a little-endian TIFF stream whose single IFD holds a Make tag
func MinimalTIFF(camera string) []byte {
	return TIFFWithASCII(0x010F, camera)
}

// TIFFWithASCII returns a little-endian TIFF stream whose single IFD holds one ASCII tag
func TIFFWithASCII(tag uint16, text string) []byte {
	value := append([]byte(text), 0)

	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(8))

	// IFD0 with one entry
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, tag)
	binary.Write(&buf, binary.LittleEndian, uint16(2))      // ASCII
	binary.Write(&buf, binary.LittleEndian, uint32(len(value)))
	if len(value) <= 4 {
		inline := make4(value)
		buf.Write(inline[:])
	} else {
		binary.Write(&buf, binary.LittleEndian, uint32(8+2+12+4))
	}
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // no next IFD

	if len(value) > 4 {
		buf.Write(value)
	}
	return buf.Bytes()
}

func make4(v []byte) [4]byte {
	var out [4]byte
	copy(out[:], v)
	return out
}

// WithJPEGSegment inserts a marker segment right after the SOI marker
func WithJPEGSegment(jpg []byte, marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}

// WithJPEGExif inserts an APP1 Exif segment carrying tiffData
func WithJPEGExif(jpg []byte, tiffData []byte) []byte {
	return WithJPEGSegment(jpg, 0xE1, append([]byte("Exif\x00\x00"), tiffData...))
}

// WithPNGChunk inserts a chunk with a valid CRC right after the IHDR chunk
func WithPNGChunk(pngData []byte, chunkType string, data []byte) []byte {
	// signature (8) + IHDR length/type (8) + IHDR data (13) + CRC (4)
	const afterIHDR = 8 + 8 + 13 + 4

	chunk := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(chunk[0:4], uint32(len(data)))
	copy(chunk[4:8], chunkType)
	chunk = append(chunk, data...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	chunk = binary.BigEndian.AppendUint32(chunk, crc)

	out := make([]byte, 0, len(pngData)+len(chunk))
	out = append(out, pngData[:afterIHDR]...)
	out = append(out, chunk...)
	return append(out, pngData[afterIHDR:]...)
}

// WebP assembles a RIFF/WEBP container from chunks given as fourCC, data pairs
func WebP(chunks ...[2][]byte) []byte {
	var body bytes.Buffer
	body.WriteString("WEBP")
	for _, c := range chunks {
		body.Write(c[0])
		binary.Write(&body, binary.LittleEndian, uint32(len(c[1])))
		body.Write(c[1])
		if len(c[1])%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}
