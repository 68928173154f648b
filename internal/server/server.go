package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/invoice-extractor/internal/export"
	"github.com/rezonia/invoice-extractor/internal/llm"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

// Config holds server configuration
type Config struct {
	Address      string
	APIKey       string
	LLMBaseURL   string
	LLMModel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server.
// All extraction is request-scoped; the server holds no batch state between
// requests, so a new upload never has to clear a previous one.
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	// Create LLM extractor if API key provided
	var llmExtractor *llm.Extractor
	if config.APIKey != "" {
		var clientOpts []llm.ClientOption
		if config.LLMBaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(config.LLMBaseURL))
		}

		client := llm.NewClient(config.APIKey, clientOpts...)

		var extractorOpts []llm.ExtractorOption
		if config.LLMModel != "" {
			extractorOpts = append(extractorOpts, llm.WithModel(config.LLMModel))
		}

		llmExtractor = llm.NewExtractor(client, extractorOpts...)
	}

	pipeline := processor.NewPipeline(
		processor.WithLLMExtractor(llmExtractor),
	)

	s := &Server{
		config:   config,
		router:   router,
		pipeline: pipeline,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Single-document extraction
		v1.POST("/extract/text", s.handleExtractText)
		v1.POST("/extract/pdf", s.handleExtractPDF)

		// Batch export
		v1.POST("/export", s.handleExport)
		v1.POST("/export/csv", s.handleExportCSV)

		// Batch reconciliation
		v1.POST("/reconcile", s.handleReconcile)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleExtractText(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := s.pipeline.ProcessText(ctx, sourceID(c, "document.txt"), string(body))
	s.writeExtractResponse(c, result)
}

func (s *Server) handleExtractPDF(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	result := s.pipeline.ProcessPDF(ctx, sourceID(c, "document.pdf"), body)
	s.writeExtractResponse(c, result)
}

func (s *Server) writeExtractResponse(c *gin.Context, result *processor.Result) {
	if result.Error != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:    result.Error.Error(),
			Warnings: result.Warnings,
		})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Invoice:    result.Invoice,
		Method:     string(result.Method),
		Confidence: result.Confidence,
		Warnings:   result.Warnings,
		Report:     reconcile.Reconcile(result.Invoice),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	invoices, failures, ok := s.processUpload(c)
	if !ok {
		return
	}

	reports := make([]*reconcile.Report, 0, len(invoices))
	for _, inv := range invoices {
		reports = append(reports, reconcile.Reconcile(inv))
	}

	c.JSON(http.StatusOK, ExportResponse{
		FilesProcessed:   len(invoices) + len(failures),
		RecordsExtracted: len(invoices),
		Rows:             export.ProjectAll(invoices),
		Summary:          reconcile.Summarize(reports, reconcile.DefaultHighDiscrepancyPct),
		Failures:         failures,
	})
}

func (s *Server) handleExportCSV(c *gin.Context) {
	invoices, _, ok := s.processUpload(c)
	if !ok {
		return
	}

	if len(invoices) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data to download"})
		return
	}

	filename := export.Filename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv")

	if err := export.WriteCSV(c.Writer, export.ProjectAll(invoices)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write CSV"})
	}
}

func (s *Server) handleReconcile(c *gin.Context) {
	invoices, failures, ok := s.processUpload(c)
	if !ok {
		return
	}

	reports := make([]*reconcile.Report, 0, len(invoices))
	for _, inv := range invoices {
		reports = append(reports, reconcile.Reconcile(inv))
	}

	c.JSON(http.StatusOK, ReconcileResponse{
		Reports:  reports,
		Summary:  reconcile.Summarize(reports, reconcile.DefaultHighDiscrepancyPct),
		Failures: failures,
	})
}

// processUpload reads multipart "files" uploads and runs each through the
// pipeline. Files that cannot be processed become failures instead of
// aborting the batch.
func (s *Server) processUpload(c *gin.Context) ([]*model.Invoice, []FileFailure, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form upload"})
		return nil, nil, false
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return nil, nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	var invoices []*model.Invoice
	var failures []FileFailure

	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			failures = append(failures, FileFailure{Filename: fh.Filename, Error: err.Error()})
			continue
		}

		var result *processor.Result
		switch processor.DetectFormat(data) {
		case processor.FormatPDF:
			result = s.pipeline.ProcessPDF(ctx, fh.Filename, data)
		case processor.FormatText:
			result = s.pipeline.ProcessText(ctx, fh.Filename, string(data))
		default:
			failures = append(failures, FileFailure{Filename: fh.Filename, Error: "unsupported file format"})
			continue
		}

		if result.Error != nil {
			failures = append(failures, FileFailure{Filename: fh.Filename, Error: result.Error.Error()})
			continue
		}

		invoices = append(invoices, result.Invoice)
	}

	return invoices, failures, true
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

// sourceID picks the document identifier for single-document requests
func sourceID(c *gin.Context, fallback string) string {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.GetHeader("X-Source-ID")); id != "" {
		return id
	}
	return fallback
}
