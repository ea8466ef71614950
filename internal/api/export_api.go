package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"planhebdo/internal/export"
	"planhebdo/internal/metrics"
)

// handleExportWeekXLSX streams the week recap workbook.
// GET /api/export/week.xlsx?shop=...&week=...
func (s *HTTPServer) handleExportWeekXLSX(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_week_xlsx")
	recaps, shopName, weekKey, ok := s.weekRecaps(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWeekXLSX(&buf, shopName, weekKey, recaps); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendFile(w, export.Filename("recap", shopName, "xlsx"),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleExportWeekPDF streams the week recap PDF.
// GET /api/export/week.pdf?shop=...&week=...
func (s *HTTPServer) handleExportWeekPDF(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_week_pdf")
	recaps, shopName, weekKey, ok := s.weekRecaps(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWeekPDF(&buf, shopName, weekKey, recaps); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendFile(w, export.Filename("recap", shopName, "pdf"), "application/pdf", buf.Bytes())
}

// handleExportMonthXLSX streams the monthly totals workbook.
// GET /api/export/month.xlsx?shop=...&year=...&month=...
func (s *HTTPServer) handleExportMonthXLSX(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_month_xlsx")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	shopID := r.URL.Query().Get("shop")
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}
	shop := s.shopsConfig().Shop(shopID)
	if shop == nil {
		writeError(w, http.StatusNotFound, "unknown shop")
		return
	}

	grid, _ := s.shopsConfig().GridFor(shopID)
	names := s.shopsConfig().EmployeeNames(shopID)
	recaps, err := s.exports.MonthRecap(r.Context(), shopID, year, month, grid, names)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	label := fmt.Sprintf("%04d-%02d", year, month)
	var buf bytes.Buffer
	if err := export.WriteMonthXLSX(&buf, shop.Name, label, recaps); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendFile(w, export.Filename("recap-mensuel", shop.Name, "xlsx"),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleExportSheets pushes the week recap to the configured spreadsheet.
// POST /api/export/sheets (body: {shop, week})
func (s *HTTPServer) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_sheets")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	if s.sheets == nil {
		writeError(w, http.StatusNotImplemented, "sheets export is not configured")
		return
	}
	var req struct {
		ShopID  string `json:"shop"`
		WeekKey string `json:"week"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	shop, ok := s.requireShopWeek(w, req.ShopID, req.WeekKey)
	if !ok {
		return
	}

	grid, _ := s.shopsConfig().GridFor(req.ShopID)
	names := s.shopsConfig().EmployeeNames(req.ShopID)
	recaps, err := s.exports.WeekRecap(r.Context(), req.ShopID, req.WeekKey, grid, names)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.sheets.PushWeek(r.Context(), shop.Name, req.WeekKey, recaps); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pushed": true})
}

func (s *HTTPServer) weekRecaps(w http.ResponseWriter, r *http.Request) ([]export.EmployeeWeekRecap, string, string, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, "", "", false
	}
	shopID := r.URL.Query().Get("shop")
	weekKey := r.URL.Query().Get("week")
	shop, ok := s.requireShopWeek(w, shopID, weekKey)
	if !ok {
		return nil, "", "", false
	}

	grid, _ := s.shopsConfig().GridFor(shopID)
	names := s.shopsConfig().EmployeeNames(shopID)
	recaps, err := s.exports.WeekRecap(r.Context(), shopID, weekKey, grid, names)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, "", "", false
	}
	return recaps, shop.Name, weekKey, true
}

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month")
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func sendFile(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
