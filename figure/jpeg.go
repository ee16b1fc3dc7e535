package figure

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
)

// pdfTeX takes natural size of JPEG figures from JFIF density, without it
// image is assumed to be 72 dpi.
const jfifDensity = 72

// encodeJPEG encodes image making sure result starts with JFIF APP0 segment.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return ensureJFIF(buf.Bytes(), jfifDensity)
}

// ensureJFIF inserts JFIF APP0 segment with density in pixels per inch if it
// is missing.
func ensureJFIF(data []byte, density uint16) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.New("jpeg too small")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return nil, errors.New("not a jpeg")
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data, nil
	}

	buf := new(bytes.Buffer)
	buf.Write(data[:2])
	buf.Write([]byte{0xFF, 0xE0})
	_ = binary.Write(buf, binary.BigEndian, uint16(0x10))
	buf.Write([]byte{'J', 'F', 'I', 'F', 0x00, 0x01, 0x02})
	buf.WriteByte(1) // units: pixels per inch
	_ = binary.Write(buf, binary.BigEndian, density)
	_ = binary.Write(buf, binary.BigEndian, density)
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes(), nil
}
