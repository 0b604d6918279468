package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Tesseract implements the Engine interface by shelling out to the tesseract
// binary in stdin/stdout mode. PDFs are tried for a native text layer first;
// scanned PDFs are rasterized page by page with go-fitz before recognition.
type Tesseract struct {
	binary string
	lang   string
	dpi    float64
}

// NewTesseract creates a Tesseract engine. Empty binary and lang default to
// "tesseract" and "eng"; dpi <= 0 defaults to 300.
func NewTesseract(binary, lang string, dpi int) (*Tesseract, error) {
	if binary == "" {
		binary = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	if dpi <= 0 {
		dpi = 300
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("locating tesseract binary: %w", err)
	}
	return &Tesseract{binary: path, lang: lang, dpi: float64(dpi)}, nil
}

// ExtractText recognizes the document's text. The content type is normalized
// and sniffed from magic bytes where the header lies.
func (t *Tesseract) ExtractText(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrUnusableInput)
	}

	mimeType := normalizeMIMEType(contentType, data)
	if mimeType == "application/pdf" {
		if text, ok := pdfTextLayer(data); ok {
			slog.Info("Using native PDF text layer", "chars", len(text))
			return text, nil
		}
		return t.recognizePDF(data)
	}

	img, err := decodeImage(data, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: decoding image: %v", ErrUnusableInput, err)
	}
	return t.recognizeImage(img)
}

// recognizePDF rasterizes each page and joins the recognized page texts with
// a blank line.
func (t *Tesseract) recognizePDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("%w: opening PDF: %v", ErrUnusableInput, err)
	}
	defer doc.Close()

	var parts []string
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, t.dpi)
		if err != nil {
			return "", fmt.Errorf("rendering PDF page %d: %w", i, err)
		}
		text, err := t.recognizeImage(img)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (t *Tesseract) recognizeImage(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, enhanceForOCR(img)); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return t.run(buf.Bytes())
}

// run pipes one PNG through tesseract. --psm 6 assumes a uniform block of
// text, which suits invoice layouts better than full auto segmentation.
func (t *Tesseract) run(pngData []byte) (string, error) {
	cmd := exec.Command(t.binary, "stdin", "stdout", "-l", t.lang, "--oem", "3", "--psm", "6")
	cmd.Stdin = bytes.NewReader(pngData)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running tesseract: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Close releases engine resources (no-op for the subprocess engine).
func (t *Tesseract) Close() error {
	return nil
}
