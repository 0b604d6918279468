package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// enhanceForOCR prepares a scanned page for recognition: grayscale for
// contrast, an aggressive contrast bump, sharpening so glyph edges survive
// rasterization, and a mild brightness lift for dark scans.
func enhanceForOCR(src image.Image) *image.NRGBA {
	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	return img
}
