package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// multipartOverhead is allowed on top of the file size for form framing
const multipartOverhead = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError maps service errors to status codes: validation failures are
// 400, missing receipts 404 and everything else 500
func writeError(w http.ResponseWriter, err error) {
	var validationErrs ValidationErrors
	var procErr *ProcessingError
	switch {
	case errors.As(err, &validationErrs):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   validationErrs.Error(),
			"details": validationErrs,
		})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Receipt not found"})
	case errors.As(err, &procErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": procErr.Error()})
	default:
		slog.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

// handleListReceipts returns the receipts matching the query filters
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	receipts, err := s.service.ListReceipts(r.Context(), filter)
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipts)
}

// contentTypeFor returns the declared content type, or one derived from the
// extension when none was declared
func contentTypeFor(declared, filename string) string {
	if declared = strings.ToLower(strings.TrimSpace(declared)); declared != "" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleUploadReceipt handles receipt upload
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			errorMsg = fmt.Sprintf("File size too large. Maximum %dMB allowed.", s.maxUploadSize>>20)
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errorMsg})
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errorMsg})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error reading file. Please try again."})
		return
	}

	contentType := contentTypeFor(header.Header.Get("Content-Type"), header.Filename)

	receipt, err := s.service.ProcessReceipt(r.Context(), header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

type updateRequest struct {
	Vendor          *string          `json:"vendor"`
	TransactionDate *string          `json:"transaction_date"`
	Amount          *decimal.Decimal `json:"amount"`
	Category        *string          `json:"category"`
}

func (u updateRequest) toUpdate() (ReceiptUpdate, error) {
	update := ReceiptUpdate{
		Vendor: u.Vendor,
		Amount: u.Amount,
	}
	if u.TransactionDate != nil {
		d, err := time.Parse(dateLayout, *u.TransactionDate)
		if err != nil {
			return ReceiptUpdate{}, ValidationErrors{{
				Field:   "transaction_date",
				Value:   *u.TransactionDate,
				Message: "must be a date in YYYY-MM-DD format",
			}}
		}
		update.TransactionDate = &d
	}
	if u.Category != nil {
		c := Category(strings.ToLower(strings.TrimSpace(*u.Category)))
		update.Category = &c
	}
	return update, nil
}

// handleUpdateReceipt applies a partial update to a receipt
func (s *Server) handleUpdateReceipt(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	update, err := req.toUpdate()
	if err != nil {
		writeError(w, err)
		return
	}

	receipt, err := s.service.UpdateReceipt(r.PathValue("id"), update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// handleGetReceiptFile returns the file for a receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteReceipt deletes a receipt
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAnalytics returns statistics over the filtered receipts
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := s.service.Analytics(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleSearch runs a keyword, pattern or range search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := FilterFromQuery(q)
	if err != nil {
		writeError(w, err)
		return
	}

	query := SearchQuery{
		Type:  q.Get("type"),
		Query: q.Get("q"),
		Field: q.Get("field"),
	}
	var errs ValidationErrors
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min", &query.Min}, {"max", &query.Max}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: p.name, Value: v, Message: "must be a number"})
			continue
		}
		*p.dst = &d
	}
	if len(errs) > 0 {
		writeError(w, errs)
		return
	}

	results, err := s.service.Search(r.Context(), filter, query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleExport streams the filtered receipts as csv, json or xlsx
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	export, err := s.service.Export(r.Context(), filter, r.URL.Query().Get("format"), &buf)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Write(buf.Bytes())
}

// handleListCategories returns the accepted categories
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AllCategories())
}
