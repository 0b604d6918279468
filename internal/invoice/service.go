package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ocrdesk/invoice-tracker/internal/ocr"
	"github.com/ocrdesk/invoice-tracker/internal/parsing"
)

// ErrNoInvoiceDetected means the recognized text yielded no header fields and
// no line items. Nothing is persisted in that case.
var ErrNoInvoiceDetected = errors.New("no invoice detected in document")

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles invoice operations
type Service struct {
	db         DB
	engine     ocr.Engine
	storage    Storage
	timeSource TimeSource
}

// NewService creates a new Service with the default time source
func NewService(db DB, engine ocr.Engine, storage Storage) *Service {
	return &Service{
		db:         db,
		engine:     engine,
		storage:    storage,
		timeSource: &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, engine ocr.Engine, storage Storage, timeSrc TimeSource) *Service {
	return &Service{
		db:         db,
		engine:     engine,
		storage:    storage,
		timeSource: timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	// Get the extension
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Remove special characters, keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	// Replace multiple spaces with single space
	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	// Trim spaces
	base = strings.TrimSpace(base)

	// Truncate to reasonable length (50 chars for base, plus extension)
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	// If base is empty after sanitization, use a default
	if base == "" {
		base = "invoice"
	}

	return base + ext
}

// ProcessInvoice recognizes text in an uploaded document, extracts the invoice
// record, and persists the invoice with its source file and sidecars. A
// re-upload of the same invoice number overwrites the stored record.
func (s *Service) ProcessInvoice(filename string, data []byte, contentType string) (*Invoice, []parsing.LineItem, error) {
	now := s.timeSource.Now()
	cleanFilename := sanitizeFilename(filename)

	text, err := s.engine.ExtractText(data, contentType)
	if err != nil {
		slog.Error("Failed to recognize text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, nil, fmt.Errorf("recognizing text: %w", err)
	}

	normalized := parsing.Normalize(text)
	fields := parsing.ExtractFields(normalized)
	items := parsing.ExtractLineItems(normalized)
	if fields.Empty() && len(items) == 0 {
		slog.Warn("Document carries no invoice fields", "filename", filename)
		return nil, nil, ErrNoInvoiceDetected
	}

	// The upload filename stands in for a missing invoice number
	doc := parsing.Assemble(fields, items, cleanFilename)

	invoice := fromDocument(doc, "", contentType, now)

	// Files are keyed by invoice number so a re-upload replaces them
	fileBase := sanitizeFilename(invoice.InvoiceNumber)
	stem := strings.TrimSuffix(fileBase, filepath.Ext(fileBase))

	savedPath, err := s.storage.Save(stem+filepath.Ext(cleanFilename), data)
	if err != nil {
		return nil, nil, fmt.Errorf("saving file: %w", err)
	}
	invoice.SourceFile = savedPath

	cleanup := func() {
		s.storage.Delete(savedPath)
		s.storage.Delete(stem + ".txt")
		s.storage.Delete(stem + ".json")
	}

	if _, err := s.storage.Save(stem+".txt", []byte(text)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("saving text sidecar: %w", err)
	}

	record, err := json.MarshalIndent(doc.Map(), "", "  ")
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("marshaling record: %w", err)
	}
	if _, err := s.storage.Save(stem+".json", record); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("saving record sidecar: %w", err)
	}

	if fields.SupplierName != nil {
		id, err := s.db.GetOrCreateSupplier(Supplier{
			Name:    *fields.SupplierName,
			Address: deref(fields.SupplierAddress),
			Email:   deref(fields.SupplierEmail),
			Phone:   deref(fields.SupplierPhone),
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("resolving supplier: %w", err)
		}
		invoice.SupplierID = id
	}

	if fields.CustomerName != nil {
		id, err := s.db.GetOrCreateCustomer(Customer{
			Name:            *fields.CustomerName,
			BillingAddress:  deref(fields.BillingAddress),
			ShippingAddress: deref(fields.ShippingAddress),
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("resolving customer: %w", err)
		}
		invoice.CustomerID = id
	}

	if err := s.db.SaveInvoice(invoice); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("saving invoice to database: %w", err)
	}
	if err := s.db.SaveItems(invoice.InvoiceNumber, doc.Items); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("saving invoice items to database: %w", err)
	}

	slog.Info("Processed invoice",
		"invoice_number", invoice.InvoiceNumber,
		"status", invoice.Status,
		"items", len(doc.Items),
	)
	return invoice, doc.Items, nil
}

// GetInvoice retrieves an invoice by number
func (s *Service) GetInvoice(number string) (*Invoice, error) {
	invoice, err := s.db.GetInvoice(number)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return invoice, nil
}

// GetInvoiceDetail retrieves an invoice with its items and resolved parties.
// Supplier and customer are nil when the invoice carries no reference.
func (s *Service) GetInvoiceDetail(number string) (*Invoice, []parsing.LineItem, *Supplier, *Customer, error) {
	invoice, err := s.db.GetInvoice(number)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("getting invoice: %w", err)
	}

	items, err := s.db.GetItems(number)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("getting invoice items: %w", err)
	}

	var supplier *Supplier
	if invoice.SupplierID != 0 {
		supplier, err = s.db.GetSupplier(invoice.SupplierID)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("getting supplier: %w", err)
		}
	}

	var customer *Customer
	if invoice.CustomerID != 0 {
		customer, err = s.db.GetCustomer(invoice.CustomerID)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("getting customer: %w", err)
		}
	}

	return invoice, items, supplier, customer, nil
}

// ListInvoices returns all invoices
func (s *Service) ListInvoices() ([]*Invoice, error) {
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

// GetItems retrieves the line items of an invoice
func (s *Service) GetItems(number string) ([]parsing.LineItem, error) {
	items, err := s.db.GetItems(number)
	if err != nil {
		return nil, fmt.Errorf("getting invoice items: %w", err)
	}
	return items, nil
}

// DeleteInvoice removes an invoice, its items, and its stored files
func (s *Service) DeleteInvoice(number string) error {
	invoice, err := s.db.GetInvoice(number)
	if err != nil {
		return fmt.Errorf("getting invoice for deletion: %w", err)
	}

	stem := strings.TrimSuffix(invoice.SourceFile, filepath.Ext(invoice.SourceFile))
	for _, name := range []string{invoice.SourceFile, stem + ".txt", stem + ".json"} {
		if err := s.storage.Delete(name); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", name, "error", err)
		}
	}

	if err := s.db.DeleteItems(number); err != nil {
		return fmt.Errorf("deleting invoice items from database: %w", err)
	}
	if err := s.db.DeleteInvoice(number); err != nil {
		return fmt.Errorf("deleting invoice from database: %w", err)
	}
	return nil
}

// GetInvoiceFile retrieves the original document for an invoice
func (s *Service) GetInvoiceFile(number string) ([]byte, string, error) {
	invoice, err := s.db.GetInvoice(number)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice: %w", err)
	}

	data, err := s.storage.Get(invoice.SourceFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice file: %w", err)
	}

	return data, invoice.ContentType, nil
}
