package api

import (
	"io"
	"net/http"

	"planhebdo/internal/importer"
	"planhebdo/internal/metrics"
)

// maxImportSize caps uploaded spreadsheets at 20 MB.
const maxImportSize = 20 << 20

// importFile extracts the uploaded spreadsheet from a multipart form.
func importFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "parse upload: "+err.Error())
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return nil, false
	}
	return file, true
}

func writeImportResult(w http.ResponseWriter, res *importer.Result) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// handleImportCA imports the CA-only export for one shop.
// POST /api/import/ca?shop=...
func (s *HTTPServer) handleImportCA(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("import_ca")
	shopID := r.URL.Query().Get("shop")
	if s.shopsConfig().Shop(shopID) == nil {
		writeError(w, http.StatusNotFound, "unknown shop")
		return
	}
	file, ok := importFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	res, err := s.importer.ImportCAOnly(r.Context(), shopID, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeImportResult(w, res)
}

// handleImportComplete imports the full daily export for one shop.
// POST /api/import/complete?shop=...
func (s *HTTPServer) handleImportComplete(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("import_complete")
	shopID := r.URL.Query().Get("shop")
	if s.shopsConfig().Shop(shopID) == nil {
		writeError(w, http.StatusNotFound, "unknown shop")
		return
	}
	file, ok := importFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	res, err := s.importer.ImportComplete(r.Context(), shopID, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeImportResult(w, res)
}

// handleImportCompleteData imports the ticket-level export; shops are
// resolved per row from the Boutique column.
// POST /api/import/complete-data
func (s *HTTPServer) handleImportCompleteData(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("import_complete_data")
	file, ok := importFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	shops := s.shopsConfig()
	res, err := s.importer.ImportCompleteData(r.Context(), file, shops.ResolveShopByName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeImportResult(w, res)
}
