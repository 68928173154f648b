package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/server"
)

const sampleText = `Invoice INV00987
15-03-2024

Item Code Item Description Quantity Price Total
A100 Widget Assembly 10 5.00 1.50 51.50

Total (Excl) 50.00
Total (Incl) 53.00`

func newTestServer() *server.Server {
	return server.NewServer(&server.Config{
		Address: ":0",
	})
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestExtractText(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/text?id=invoice.txt",
		strings.NewReader(sampleText))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.NotNil(t, resp.Invoice)
	assert.Equal(t, "invoice.txt", resp.Invoice.SourceID)
	assert.Equal(t, "INV00987", resp.Invoice.Reference)
	assert.Equal(t, "pattern", resp.Method)
	require.Len(t, resp.Invoice.Items, 1)

	require.NotNil(t, resp.Report)
	assert.Equal(t, 1, resp.Report.ItemsFound)
	assert.True(t, resp.Report.Discrepancy.IsZero())
}

func TestExtractText_SourceIDHeader(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/text",
		strings.NewReader(sampleText))
	req.Header.Set("X-Source-ID", "march.txt")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "march.txt", resp.Invoice.SourceID)
}

func TestExtractText_EmptyBody(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/text", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractText_NoItemsStillOK(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/text",
		strings.NewReader("a letter that is not an invoice"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Invoice.Items)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestExtractPDF_InvalidBytes(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/pdf",
		bytes.NewReader([]byte("%PDF-1.4 truncated")))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestExport(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartBody(t, map[string]string{
		"one.txt": sampleText,
		"two.txt": "nothing extractable here",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.FilesProcessed)
	assert.Equal(t, 2, resp.RecordsExtracted)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 2, resp.Summary.TotalInvoices)
}

func TestExport_NoFiles(t *testing.T) {
	srv := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartBody(t, map[string]string{"one.txt": sampleText})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export/csv", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice_data_")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2) // header + one record
	assert.Contains(t, lines[0], "Our Reference")
	assert.Contains(t, lines[1], "INV00987")
}

func TestReconcileEndpoint(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartBody(t, map[string]string{"one.txt": sampleText})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ReconcileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "one.txt", resp.Reports[0].SourceID)
	assert.Equal(t, 1, resp.Summary.TotalInvoices)
	assert.Equal(t, 0, resp.Summary.HighDiscrepancyCount)
}

func TestReconcile_NotMultipart(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile",
		strings.NewReader("plain body"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
