package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"finlens/internal/log"
	"finlens/internal/metrics"
	"finlens/internal/report"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleSummary totals the user's records dated within the optional
// from/to range.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uid, ok := s.resolveUser(w, r, q.Get("uid"))
	if !ok {
		return
	}

	summary, err := s.summaries.PeriodSummary(r.Context(), uid, parseBound(q, "from"), parseBound(q, "to"))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Summary failed", log.FieldError, err)
		writeFailure(w, "Failed to generate summary", err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryJSON(summary))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uid, ok := s.resolveUser(w, r, q.Get("uid"))
	if !ok {
		return
	}
	params, err := ParseMonthParams(q, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.summaries.Dashboard(r.Context(), uid, params.Year, params.Month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard failed",
			log.FieldYear, params.Year,
			log.FieldMonth, params.Month,
			log.FieldError, err)
		writeFailure(w, "Failed to load dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardJSON(params, d))
}

// handleSavingsTrend downloads the year's monthly income, expenses and
// savings as CSV.
func (s *Server) handleSavingsTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uid, ok := s.resolveUser(w, r, q.Get("uid"))
	if !ok {
		return
	}
	year := s.now().UTC().Year()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", v))
			return
		}
		year = y
	}

	buckets, err := s.summaries.YearBuckets(r.Context(), uid, year)
	if err != nil {
		metrics.IncExport("csv", metrics.ResultError)
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Savings trend failed", log.FieldError, err)
		writeFailure(w, "Failed to build savings trend", err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteSavingsTrendCSV(&buf, buckets); err != nil {
		metrics.IncExport("csv", metrics.ResultError)
		writeFailure(w, "Failed to build savings trend", err)
		return
	}
	metrics.IncExport("csv", metrics.ResultSuccess)
	writeAttachment(w, contentTypeCSV, report.SavingsTrendFilename(year), buf.Bytes())
}

// handleMonthlyStatement downloads one month of transactions as csv, pdf
// or xlsx. The format defaults to pdf.
func (s *Server) handleMonthlyStatement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uid, ok := s.resolveUser(w, r, q.Get("uid"))
	if !ok {
		return
	}
	params, err := ParseMonthParams(q, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" {
		format = "pdf"
	}
	if format != "csv" && format != "pdf" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "format must be one of csv, pdf, xlsx")
		return
	}

	st, err := s.summaries.MonthlyStatement(r.Context(), uid, params.Year, params.Month)
	if err != nil {
		metrics.IncExport(format, metrics.ResultError)
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly statement failed", log.FieldError, err)
		writeFailure(w, "Failed to load statement", err)
		return
	}

	body, contentType, err := renderStatement(st, format)
	if err != nil {
		metrics.IncExport(format, metrics.ResultError)
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Statement render failed",
			"format", format,
			log.FieldError, err)
		writeFailure(w, "Failed to render statement", err)
		return
	}
	metrics.IncExport(format, metrics.ResultSuccess)
	writeAttachment(w, contentType, report.StatementFilename(params.Year, params.Month, format), body)
}

func renderStatement(st report.MonthlyStatement, format string) ([]byte, string, error) {
	switch format {
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteStatementCSV(&buf, st.Entries); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), contentTypeCSV, nil
	case "xlsx":
		b, err := report.BuildStatementXLSX(st)
		return b, contentTypeXLSX, err
	default:
		b, err := report.BuildStatementPDF(st)
		return b, contentTypePDF, err
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
