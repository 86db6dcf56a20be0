package receipt

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// DefaultMaxUploadSize is the largest accepted upload (10 MiB)
	DefaultMaxUploadSize = 10 << 20

	maxVendorLength = 200
)

// MaxAmount is the largest storable amount (ten digits, two decimal places)
var MaxAmount = decimal.New(9999999999, -2)

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".pdf", ".txt"}

var heicExtensions = []string{".heic", ".heif"}

// Validate checks extracted fields and returns them normalized: the vendor
// is trimmed, the amount rounded to two places and an absent category set to
// Other. All failures are reported together as ValidationErrors.
func Validate(f Fields) (Fields, error) {
	var errs ValidationErrors

	f.Vendor = strings.TrimSpace(f.Vendor)
	switch {
	case f.Vendor == "":
		errs = append(errs, ValidationError{Field: "vendor", Message: "vendor name cannot be empty"})
	case utf8.RuneCountInString(f.Vendor) > maxVendorLength:
		errs = append(errs, ValidationError{Field: "vendor", Value: f.Vendor,
			Message: fmt.Sprintf("vendor name cannot exceed %d characters", maxVendorLength)})
	}

	f.Amount = f.Amount.Round(2)
	switch {
	case !f.Amount.IsPositive():
		errs = append(errs, ValidationError{Field: "amount", Value: f.Amount.String(), Message: "amount must be positive"})
	case f.Amount.GreaterThan(MaxAmount):
		errs = append(errs, ValidationError{Field: "amount", Value: f.Amount.String(),
			Message: fmt.Sprintf("amount cannot exceed %s", MaxAmount.StringFixed(2))})
	}

	if f.TransactionDate.IsZero() {
		errs = append(errs, ValidationError{Field: "transaction_date", Message: "transaction date is required"})
	}

	if !(f.ConfidenceScore >= 0 && f.ConfidenceScore <= 1) {
		var value any
		if !math.IsNaN(f.ConfidenceScore) && !math.IsInf(f.ConfidenceScore, 0) {
			value = f.ConfidenceScore
		}
		errs = append(errs, ValidationError{Field: "confidence_score", Value: value,
			Message: "confidence score must be between 0 and 1"})
	}

	if f.Category == "" {
		f.Category = Other
	} else if !f.Category.IsValid() {
		errs = append(errs, ValidationError{Field: "category", Value: string(f.Category),
			Message: fmt.Sprintf("category must be one of: %s", strings.Join(AllCategories(), ", "))})
	}

	if len(errs) > 0 {
		return Fields{}, errs
	}
	return f, nil
}

// UploadRules decide which uploaded files are accepted
type UploadRules struct {
	MaxSize   int64
	AllowHEIC bool
}

// DefaultUploadRules accept jpg, jpeg, png, pdf and txt files up to 10 MiB
func DefaultUploadRules() UploadRules {
	return UploadRules{MaxSize: DefaultMaxUploadSize}
}

// ValidateUpload checks an upload against the default rules
func ValidateUpload(name string, size int64) error {
	return DefaultUploadRules().Validate(name, size)
}

// Validate checks the extension (case-insensitive) and size of an upload
func (u UploadRules) Validate(name string, size int64) error {
	var errs ValidationErrors

	allowed := allowedExtensions
	if u.AllowHEIC {
		allowed = append(slices.Clone(allowedExtensions), heicExtensions...)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(allowed, ext) {
		errs = append(errs, ValidationError{Field: "file", Value: name,
			Message: fmt.Sprintf("file type not supported. Allowed: %s", strings.Join(allowed, ", "))})
	}

	maxSize := u.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if size > maxSize {
		errs = append(errs, ValidationError{Field: "file", Value: size,
			Message: fmt.Sprintf("file size too large. Maximum %dMB allowed", maxSize>>20)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
