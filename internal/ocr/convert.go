package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"

	"github.com/gen2brain/heic"
)

// normalizeMIMEType lowercases and trims the declared content type and
// corrects it from magic bytes where the declaration lies, which phone
// uploads routinely do.
func normalizeMIMEType(contentType string, data []byte) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case isPDF(data):
		return "application/pdf"
	case isHEIC(data):
		return "image/heic"
	case mimeType == "":
		return "image/jpeg"
	}
	return mimeType
}

// decodeImage decodes JPEG, PNG, GIF and HEIC/HEIF data into an image.
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	// HEIC/HEIF (iPhone photos) is not covered by Go's image package.
	if isHEIC(data) || strings.Contains(mimeType, "hei") {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// isHEIC checks for the ftyp box brands HEIC/HEIF containers start with.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
