package scanning

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
)

// OCRUnavailableText is returned in place of recognized text when an image is
// acquired but no OCR backend can run.
const OCRUnavailableText = "OCR not available - please install pytesseract"

// ErrOCRUnavailable is returned by OCR backends that cannot run in the
// current environment (missing binary, missing credentials).
var ErrOCRUnavailable = errors.New("ocr not available")

// File is an uploaded receipt document
type File interface {
	io.Reader
	// Name is the original filename, used to pick the decoder by extension
	Name() string
	// Size is the declared size in bytes
	Size() int64
}

// OCR recognizes text in a decoded image
type OCR interface {
	// RecognizeText returns the text found in img
	RecognizeText(ctx context.Context, img image.Image) (string, error)
	// Close releases any resources held by the backend
	Close() error
}

type memoryFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *memoryFile) Name() string { return f.name }
func (f *memoryFile) Size() int64  { return f.size }

// NewFile wraps in-memory data as a File
func NewFile(name string, data []byte) File {
	return &memoryFile{
		Reader: bytes.NewReader(data),
		name:   name,
		size:   int64(len(data)),
	}
}
