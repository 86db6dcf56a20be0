package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zombor/receipt-ledger/internal/analytics"
	"github.com/zombor/receipt-ledger/internal/scanning"
)

const (
	// UnknownVendor is used when no vendor line can be found
	UnknownVendor = "Unknown Vendor"

	tableConfidence    = 0.8
	positionConfidence = 0.3
	fallbackConfidence = 0.1

	maxVendorSnippet = 50
	vendorLineScan   = 3
)

// reasonableAmount is the exclusive upper bound for preferred amount
// candidates (one lakh)
var reasonableAmount = decimal.NewFromInt(100000)

// Fields are the extracted receipt fields before validation. A zero value
// means the field is absent.
type Fields struct {
	Vendor          string
	TransactionDate time.Time
	Amount          decimal.Decimal
	Category        Category
	RawText         string
	ConfidenceScore float64
}

// TextSource turns an uploaded file into text
type TextSource interface {
	Acquire(ctx context.Context, f scanning.File) (string, error)
}

// Extractor derives receipt fields from uploaded files
type Extractor struct {
	source     TextSource
	timeSource TimeSource
}

// NewExtractor creates an Extractor that dates undated receipts with the
// current day
func NewExtractor(source TextSource) *Extractor {
	return NewExtractorWithDeps(source, &defaultTimeSource{})
}

// NewExtractorWithDeps creates an Extractor with a custom time source for testing
func NewExtractorWithDeps(source TextSource, timeSrc TimeSource) *Extractor {
	return &Extractor{
		source:     source,
		timeSource: timeSrc,
	}
}

// Parse acquires the text of f and extracts its fields.
//
// Acquisition failures do not fail the call: they produce a fallback record
// whose raw text is the failure message, which validation then rejects for
// its zero amount. Any other failure is returned as a *ProcessingError.
func (e *Extractor) Parse(ctx context.Context, f scanning.File) (Fields, error) {
	text, err := e.source.Acquire(ctx, f)
	if err != nil {
		var acqErr *scanning.AcquisitionError
		if errors.As(err, &acqErr) {
			slog.Warn("Text acquisition failed, using fallback record",
				"filename", f.Name(),
				"kind", acqErr.Kind,
				"error", err,
			)
			return e.fallback(err), nil
		}
		return Fields{}, &ProcessingError{Err: fmt.Errorf("acquiring text: %w", err)}
	}
	return e.ExtractFields(text), nil
}

func (e *Extractor) fallback(err error) Fields {
	return Fields{
		Vendor:          "Unknown",
		TransactionDate: e.today(),
		Amount:          decimal.Zero,
		Category:        Other,
		RawText:         err.Error(),
		ConfidenceScore: 0,
	}
}

func (e *Extractor) today() time.Time {
	return analytics.Day(e.timeSource.Now())
}

// ExtractFields runs the vendor, amount, date and category passes over
// text. The confidence score is the vendor confidence.
func (e *Extractor) ExtractFields(text string) Fields {
	lower := strings.ToLower(text)

	vendor, confidence := extractVendor(lower)
	date, ok := extractDate(lower)
	if !ok {
		date = e.today()
	}

	return Fields{
		Vendor:          vendor,
		TransactionDate: date,
		Amount:          extractAmount(lower),
		Category:        determineCategory(vendor, lower),
		RawText:         text,
		ConfidenceScore: confidence,
	}
}

func extractVendor(text string) (string, float64) {
	for _, v := range vendorPatterns {
		if v.pattern.MatchString(text) {
			return cases.Title(language.Und).String(v.name), tableConfidence
		}
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines[:min(len(lines), vendorLineScan)] {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= 2 {
			continue
		}
		if first, _ := utf8.DecodeRuneInString(line); unicode.IsDigit(first) {
			continue
		}
		return truncateRunes(line, maxVendorSnippet), positionConfidence
	}

	return UnknownVendor, fallbackConfidence
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// extractAmount returns the largest candidate below one lakh, or the largest
// candidate when none is below it. Zero when nothing matches.
func extractAmount(text string) decimal.Decimal {
	var best, bestAny decimal.Decimal
	var found, foundAny bool

	for _, p := range amountPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
			if err != nil || !amount.IsPositive() {
				continue
			}
			if !foundAny || amount.GreaterThan(bestAny) {
				bestAny, foundAny = amount, true
			}
			if amount.LessThan(reasonableAmount) && (!found || amount.GreaterThan(best)) {
				best, found = amount, true
			}
		}
	}

	switch {
	case found:
		return best
	case foundAny:
		return bestAny
	}
	return decimal.Zero
}

func extractDate(text string) (time.Time, bool) {
	for _, p := range datePatterns {
		for _, m := range p.FindAllString(text, -1) {
			if d, ok := parseDate(m); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func determineCategory(vendor, text string) Category {
	vendor = strings.ToLower(vendor)
	for _, k := range categoryKeys {
		if strings.Contains(vendor, k.key) {
			return k.category
		}
	}
	for _, k := range categoryKeys {
		if strings.Contains(text, k.key) {
			return k.category
		}
	}
	return Other
}
