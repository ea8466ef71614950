package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"planhebdo/internal/importer"
)

func buildUpload(t *testing.T, rows [][]any) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "export.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func postUpload(t *testing.T, h http.Handler, path string, rows [][]any) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := buildUpload(t, rows)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestImportCAEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Router()

	rows := [][]any{
		{"Date", "", "", "", "", "", "", "", "", "CA"},
		{"03/08/2026", "", "", "", "", "", "", "", "", "150000"},
	}
	rec := postUpload(t, h, "/api/import/ca?shop=centre", rows)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[importer.Result](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Imported)

	count, err := st.CountRevenueDays(context.Background(), "centre")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportCAUnknownShop(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	rec := postUpload(t, h, "/api/import/ca?shop=inconnue", [][]any{{"Date"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportMissingFileField(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("autre", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/ca?shop=centre", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportCompleteDataEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Router()

	rows := [][]any{
		{"Date", "Boutique", "CA"},
		{"03/08/2026", "Boutique Centre", "100"},
		{"03/08/2026", "Boutique Centre", "50"},
	}
	rec := postUpload(t, h, "/api/import/complete-data", rows)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[importer.Result](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Imported)

	count, err := st.CountRevenueDays(context.Background(), "centre")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "ticket rows aggregate per day")
}

func TestImportCompleteDataBadHeaders(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Router()

	rec := postUpload(t, h, "/api/import/complete-data", [][]any{
		{"Date", "CA"},
		{"03/08/2026", "100"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res := decode[importer.Result](t, rec)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Boutique")
}
