package scanning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Acquirer turns uploaded receipt files into raw text
type Acquirer struct {
	ocr    OCR
	logger *slog.Logger
}

// NewAcquirer creates an Acquirer. ocr may be nil, in which case images
// acquire as OCRUnavailableText.
func NewAcquirer(ocr OCR, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{ocr: ocr, logger: logger}
}

// Extension returns the lowercased extension of filename without the dot
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Acquire reads f and returns its text, choosing the decoder by extension.
// Known failure modes are returned as *AcquisitionError; anything else
// (such as a cancelled context) is returned as-is.
func (a *Acquirer) Acquire(ctx context.Context, f File) (string, error) {
	ext := Extension(f.Name())
	switch ext {
	case "pdf", "txt", "jpg", "jpeg", "png", "heic", "heif":
	default:
		return "", acquisitionErrorf(FailureUnsupported, f.Name(), "unsupported file type: %s", ext)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", acquisitionErrorf(FailureUnreadable, f.Name(), "reading file: %w", err)
	}

	a.logger.Debug("acquiring text", "filename", f.Name(), "ext", ext, "bytes", len(data))

	switch ext {
	case "pdf":
		return pdfText(f.Name(), data)
	case "txt":
		if !utf8.Valid(data) {
			return "", acquisitionErrorf(FailureDecode, f.Name(), "decoding text: invalid UTF-8")
		}
		return string(data), nil
	default:
		return a.imageText(ctx, f.Name(), data, ext)
	}
}

func (a *Acquirer) imageText(ctx context.Context, filename string, data []byte, ext string) (string, error) {
	img, err := decodeImage(filename, data, ext)
	if err != nil {
		return "", err
	}

	if a.ocr == nil {
		a.logger.Warn("OCR backend not configured, image text unavailable", "filename", filename)
		return OCRUnavailableText, nil
	}

	text, err := a.ocr.RecognizeText(ctx, img)
	if err != nil {
		if errors.Is(err, ErrOCRUnavailable) {
			a.logger.Warn("OCR backend unavailable", "filename", filename, "error", err)
			return OCRUnavailableText, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("recognizing text: %w", ctxErr)
		}
		return "", acquisitionErrorf(FailureOCR, filename, "recognizing text: %w", err)
	}

	return Normalize(text), nil
}
