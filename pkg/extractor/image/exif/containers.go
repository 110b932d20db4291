package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	exifHeader   = []byte("Exif\x00\x00")
	pngSignature = []byte("\x89PNG\r\n\x1a\n")

	errTruncated = errors.New("truncated container")
)

// JPEG markers that stand alone without a length field
func standaloneMarker(m byte) bool {
	return m == 0x01 || m == 0xD8 || (m >= 0xD0 && m <= 0xD7)
}

// findJPEGExif walks the JPEG header segments up to the first scan and
// returns the TIFF payload of an APP1 Exif segment, or nil when there is none.
func findJPEGExif(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, errors.New("missing JPEG SOI marker")
	}

	pos := 2
	for pos < len(data) {
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("expected marker at offset %d", pos)
		}

		// Skip 0xFF fill bytes
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			return nil, errTruncated
		}

		marker := data[pos]
		pos++

		if standaloneMarker(marker) {
			continue
		}
		// Metadata segments all precede the first scan
		if marker == 0xDA || marker == 0xD9 {
			return nil, nil
		}

		if pos+2 > len(data) {
			return nil, errTruncated
		}
		length := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		if length < 2 || pos+length > len(data) {
			return nil, fmt.Errorf("segment 0x%02X at offset %d: bad length %d", marker, pos-2, length)
		}

		segment := data[pos+2 : pos+length]
		if marker == 0xE1 && bytes.HasPrefix(segment, exifHeader) {
			return segment[len(exifHeader):], nil
		}

		pos += length
	}

	return nil, nil
}

// findPNGExif walks PNG chunks until IEND and returns the eXIf chunk data
func findPNGExif(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("missing PNG signature")
	}

	pos := len(pngSignature)
	for pos < len(data) {
		if pos+8 > len(data) {
			return nil, errTruncated
		}
		length := int64(binary.BigEndian.Uint32(data[pos : pos+4]))
		chunkType := string(data[pos+4 : pos+8])

		end := int64(pos) + 8 + length + 4 // header, data, CRC
		if end > int64(len(data)) {
			return nil, fmt.Errorf("chunk %q at offset %d: %w", chunkType, pos, errTruncated)
		}

		switch chunkType {
		case "eXIf":
			return data[pos+8 : pos+8+int(length)], nil
		case "IEND":
			return nil, nil
		}

		pos = int(end)
	}

	return nil, nil
}

// findWebPExif walks RIFF chunks of a WebP file and returns the EXIF chunk data
func findWebPExif(data []byte) ([]byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, errors.New("missing RIFF/WEBP header")
	}

	pos := 12
	for pos < len(data) {
		if pos+8 > len(data) {
			return nil, errTruncated
		}
		fourCC := string(data[pos : pos+4])
		size := int64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))

		end := int64(pos) + 8 + size
		if end > int64(len(data)) {
			return nil, fmt.Errorf("chunk %q at offset %d: %w", fourCC, pos, errTruncated)
		}

		if fourCC == "EXIF" {
			payload := data[pos+8 : int(end)]
			// Some writers keep the JPEG-style header in front of the TIFF data
			return bytes.TrimPrefix(payload, exifHeader), nil
		}

		// Chunks are padded to an even size
		if size%2 == 1 {
			end++
		}
		pos = int(end)
	}

	return nil, nil
}

// hasTIFFHeader checks the byte order mark and magic number of a TIFF stream
func hasTIFFHeader(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	switch string(data[:4]) {
	case "II*\x00", "MM\x00*":
		return true
	}
	return false
}
