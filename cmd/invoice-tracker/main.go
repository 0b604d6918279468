package main

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/ocrdesk/invoice-tracker/internal/invoice"
	"github.com/ocrdesk/invoice-tracker/internal/ocr"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("invoice-tracker")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "invoice-tracker.db", "Database file path")
		storagePath = fs.StringLong("storage", "./invoices", "Storage directory path")
		tessBinary  = fs.StringLong("tesseract", "tesseract", "Tesseract binary path")
		lang        = fs.StringLong("lang", "eng", "Tesseract language")
		dpi         = fs.IntLong("dpi", 300, "Rasterization DPI for PDF pages")
		input       = fs.StringLong("input", "", "Process a file or directory and exit instead of serving")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := invoice.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize OCR engine
	slog.Info("Initializing OCR engine...", "binary", *tessBinary, "lang", *lang)
	engine, err := ocr.NewTesseract(*tessBinary, *lang, *dpi)
	if err != nil {
		slog.Error("Failed to initialize OCR engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := invoice.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	invoiceService := invoice.NewService(db, engine, store)

	// Batch mode: process the given file or directory and exit
	if *input != "" {
		if err := processBatch(invoiceService, *input); err != nil {
			slog.Error("Batch processing failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize server
	basicAuth := invoice.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := invoice.NewServer(invoiceService, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// processBatch runs extraction over a single document or every document in a
// directory, in name order. Documents with no detectable invoice are skipped,
// not fatal.
func processBatch(service *invoice.Service, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading input path: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("reading input directory: %w", err)
		}
		files = files[:0]
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
		sort.Strings(files)
	}

	var failed int
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			slog.Error("Failed to read file", "file", file, "error", err)
			failed++
			continue
		}

		inv, items, err := service.ProcessInvoice(filepath.Base(file), data, contentTypeForFile(file))
		if errors.Is(err, invoice.ErrNoInvoiceDetected) {
			slog.Warn("Skipping document with no invoice content", "file", file)
			continue
		}
		if err != nil {
			slog.Error("Failed to process document", "file", file, "error", err)
			failed++
			continue
		}
		slog.Info("Processed document",
			"file", file,
			"invoice_number", inv.InvoiceNumber,
			"items", len(items),
		)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(files))
	}
	return nil
}

func contentTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}
