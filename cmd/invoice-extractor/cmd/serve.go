package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for extracting invoice data.

The API provides endpoints for:
  - POST /api/v1/extract/text  - Extract from document text
  - POST /api/v1/extract/pdf   - Extract from a PDF upload
  - POST /api/v1/export        - Batch extract, return export rows as JSON
  - POST /api/v1/export/csv    - Batch extract, return a CSV download
  - POST /api/v1/reconcile     - Batch extract, return discrepancy reports
  - GET  /health               - Health check

Examples:
  # Start server on default port
  invoice-extractor serve

  # Start on custom port with LLM fallback enabled
  invoice-extractor serve --address :8080 --api-key <key>

  # Start in debug mode
  invoice-extractor serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      serverAddr,
		APIKey:       apiKey,
		LLMBaseURL:   llmBaseURL,
		LLMModel:     llmModel,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	if apiKey != "" {
		fmt.Println("LLM fallback enabled")
	} else {
		fmt.Println("LLM fallback disabled (no API key)")
	}

	return srv.Run()
}
