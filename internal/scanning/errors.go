package scanning

import "fmt"

// FailureKind classifies why text could not be acquired from a file
type FailureKind string

const (
	FailureUnsupported FailureKind = "unsupported"
	FailureUnreadable  FailureKind = "unreadable"
	FailureDecode      FailureKind = "decode"
	FailurePage        FailureKind = "page"
	FailureOCR         FailureKind = "ocr"
)

// AcquisitionError is returned when a file is unreadable, undecodable or of
// an unsupported type. Callers convert it into a fallback record instead of
// failing the upload.
type AcquisitionError struct {
	Kind     FailureKind
	Filename string
	Err      error
}

func (e *AcquisitionError) Error() string {
	return e.Err.Error()
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

func acquisitionErrorf(kind FailureKind, filename, format string, args ...any) *AcquisitionError {
	return &AcquisitionError{
		Kind:     kind,
		Filename: filename,
		Err:      fmt.Errorf(format, args...),
	}
}
