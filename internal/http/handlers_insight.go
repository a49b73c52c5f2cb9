package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
	"finlens/internal/llm"
	"finlens/internal/log"
	"finlens/internal/statement"
)

// multipartOverhead leaves room for boundaries and headers around an upload.
const multipartOverhead = 1 << 20

type amountExtractRequest struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
	Kind     string `json:"kind"`
}

type amountExtractResponse struct {
	Amount   json.Number `json:"amount"`
	RawText  string      `json:"rawText"`
	Source   string      `json:"source"`
	Category string      `json:"category"`
}

type statsInsightsRequest struct {
	TotalIncome    decimal.Decimal            `json:"totalIncome"`
	TotalExpense   decimal.Decimal            `json:"totalExpense"`
	CategoryTotals map[string]decimal.Decimal `json:"categoryTotals"`
}

// decodeInline strips an optional data URL prefix and decodes the payload.
func decodeInline(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return data, nil
}

// handleAmountExtract reads the payable amount of an inline document.
func (s *Server) handleAmountExtract(w http.ResponseWriter, r *http.Request) {
	var req amountExtractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Base64) == "" {
		writeError(w, http.StatusBadRequest, "Missing 'base64' field.")
		return
	}
	data, err := decodeInline(req.Base64)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid 'base64' field.")
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		writeError(w, http.StatusBadRequest, s.tooLargeMessage())
		return
	}

	kind := core.Expense
	if strings.TrimSpace(req.Kind) != "" {
		if kind, err = core.ParseKind(req.Kind); err != nil {
			writeError(w, http.StatusBadRequest, "kind must be income or expense")
			return
		}
	}
	mimeType := strings.TrimSpace(req.MimeType)
	if mimeType == "" {
		mimeType = llm.DefaultMIMEType
	}

	ctx, cancel := s.modelContext(r)
	defer cancel()

	res, err := s.insights.ExtractAmount(ctx, data, mimeType, kind)
	if err != nil {
		s.writeModelError(w, r, "Gemini PDF extraction failed.", err)
		return
	}
	if !res.Found {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:   "Could not extract a valid amount.",
			RawText: res.RawText,
		})
		return
	}
	writeJSON(w, http.StatusOK, amountExtractResponse{
		Amount:   number(res.Amount),
		RawText:  res.RawText,
		Source:   res.Source,
		Category: res.Category,
	})
}

// handleFileTransaction extracts transactions from an uploaded statement.
// Nothing is stored until the client commits them.
func (s *Server) handleFileTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, s.tooLargeMessage())
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > s.maxUploadBytes {
		writeError(w, http.StatusBadRequest, s.tooLargeMessage())
		return
	}
	if !statement.IsSupported(header.Filename) {
		writeError(w, http.StatusBadRequest, "Unsupported file type")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		writeFailure(w, "Transaction extraction failed", err)
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		writeError(w, http.StatusBadRequest, s.tooLargeMessage())
		return
	}

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Statement uploaded",
		log.FieldFilename, header.Filename,
		log.FieldFileSize, len(data))

	ctx, cancel := s.modelContext(r)
	defer cancel()

	txs, err := s.insights.ExtractStatement(ctx, header.Filename, data)
	switch {
	case errors.Is(err, statement.ErrEmptyDocument):
		txs = nil
	case errors.Is(err, statement.ErrUnsupportedFileType):
		writeError(w, http.StatusBadRequest, "Unsupported file type")
		return
	case err != nil:
		s.writeModelError(w, r, "Transaction extraction failed", err)
		return
	}
	if txs == nil {
		txs = []statement.ExtractedTransaction{}
	}

	logger.InfoContext(r.Context(), "Statement parsed", log.FieldTransactions, len(txs))
	writeJSON(w, http.StatusOK, transactionsJSON{Transactions: txs})
}

// handleInsight answers free text with the model's reply.
func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Missing 'text' field in request body.")
		return
	}

	ctx, cancel := s.modelContext(r)
	defer cancel()

	content, err := s.insights.FreeformInsight(ctx, req.Text)
	if err != nil {
		s.writeModelError(w, r, "Insight generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

// handleStatsInsights asks for a financial health summary of the posted
// totals. Missing totals count as zero.
func (s *Server) handleStatsInsights(w http.ResponseWriter, r *http.Request) {
	var req statsInsightsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx, cancel := s.modelContext(r)
	defer cancel()

	insights, err := s.insights.StatsInsights(ctx, llm.Stats{
		TotalIncome:    req.TotalIncome,
		TotalExpense:   req.TotalExpense,
		CategoryTotals: req.CategoryTotals,
	})
	if err != nil {
		s.writeModelError(w, r, "Insight generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insights": insights})
}

// handleDashboardInsight returns two or three bullet points about a month.
func (s *Server) handleDashboardInsight(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := s.modelContext(r)
	defer cancel()

	points, err := s.insights.MonthlyInsight(ctx, uid, params.Year, params.Month)
	if err != nil {
		s.writeModelError(w, r, "Insight generation failed", err)
		return
	}
	if points == nil {
		points = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"points": points})
}

func (s *Server) tooLargeMessage() string {
	return fmt.Sprintf("File too large (max %dMB)", s.maxUploadBytes>>20)
}
