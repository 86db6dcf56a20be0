package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-ledger/internal/scanning"
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Parser extracts receipt fields from an uploaded file
type Parser interface {
	Parse(ctx context.Context, f scanning.File) (Fields, error)
}

// Service handles receipt operations
type Service struct {
	db          DB
	parser      Parser
	storage     Storage
	uploads     UploadRules
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, parser Parser, storage Storage) *Service {
	return NewServiceWithDeps(db, parser, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, parser Parser, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		parser:      parser,
		storage:     storage,
		uploads:     DefaultUploadRules(),
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// SetUploadRules replaces the rules uploads are checked against
func (s *Service) SetUploadRules(rules UploadRules) {
	s.uploads = rules
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// ProcessReceipt checks an upload, stores the file, extracts and validates
// its fields and saves the resulting receipt.
//
// Rejected uploads and records are returned as ValidationErrors and leave
// nothing behind. Every other failure is a *ProcessingError.
func (s *Service) ProcessReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Receipt, error) {
	if err := s.uploads.Validate(filename, int64(len(data))); err != nil {
		return nil, err
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, &ProcessingError{Err: fmt.Errorf("saving file: %w", err)}
	}

	fields, err := s.parser.Parse(ctx, scanning.NewFile(filename, data))
	if err != nil {
		slog.Error("Failed to extract receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		var procErr *ProcessingError
		if errors.As(err, &procErr) {
			return nil, err
		}
		return nil, &ProcessingError{Err: fmt.Errorf("extracting receipt: %w", err)}
	}

	valid, err := Validate(fields)
	if err != nil {
		slog.Info("Rejected extracted receipt",
			"filename", filename,
			"vendor", fields.Vendor,
			"amount", fields.Amount.String(),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, err
	}

	receipt := &Receipt{
		ID:              id,
		Vendor:          valid.Vendor,
		TransactionDate: valid.TransactionDate,
		Amount:          valid.Amount,
		Category:        valid.Category,
		RawText:         valid.RawText,
		ConfidenceScore: valid.ConfidenceScore,
		Filename:        savedPath,
		ContentType:     contentType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.db.SaveReceipt(receipt); err != nil {
		s.removeFile(savedPath)
		return nil, &ProcessingError{Err: fmt.Errorf("saving receipt to database: %w", err)}
	}

	slog.Info("Processed receipt",
		"id", receipt.ID,
		"vendor", receipt.Vendor,
		"amount", receipt.Amount.String(),
		"category", receipt.Category,
		"confidence", receipt.ConfidenceScore,
	)
	return receipt, nil
}

func (s *Service) removeFile(path string) {
	if err := s.storage.Delete(path); err != nil {
		slog.Warn("Failed to delete file", "filename", path, "error", err)
	}
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// UpdateReceipt applies the non-nil fields of update and re-validates the
// result. Extraction is not re-run.
func (s *Service) UpdateReceipt(id string, update ReceiptUpdate) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt for update: %w", err)
	}

	fields := receipt.Fields()
	if update.Vendor != nil {
		fields.Vendor = *update.Vendor
	}
	if update.TransactionDate != nil {
		fields.TransactionDate = *update.TransactionDate
	}
	if update.Amount != nil {
		fields.Amount = *update.Amount
	}
	if update.Category != nil {
		fields.Category = *update.Category
	}

	valid, err := Validate(fields)
	if err != nil {
		return nil, err
	}

	receipt.Vendor = valid.Vendor
	receipt.TransactionDate = valid.TransactionDate
	receipt.Amount = valid.Amount
	receipt.Category = valid.Category
	receipt.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	return receipt, nil
}

// DeleteReceipt removes a receipt and its file
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	// A missing file does not block removing the record
	s.removeFile(receipt.Filename)

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the file data for a receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}
