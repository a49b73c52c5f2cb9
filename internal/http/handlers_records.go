package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"finlens/internal/core"
	"finlens/internal/log"
	"finlens/internal/statement"
)

type createRecordRequest struct {
	UID      string          `json:"uid"`
	Amount   json.RawMessage `json:"amount"`
	Date     core.RawDate    `json:"date"`
	Category string          `json:"category"`
	Source   string          `json:"source"`
	Title    string          `json:"title"`
	Text     string          `json:"text"`
}

type commitRequest struct {
	UID          string                           `json:"uid"`
	Transactions []statement.ExtractedTransaction `json:"transactions"`
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidKind,
		core.ErrInvalidDate,
		core.ErrEmptyUserID,
		core.ErrEmptyLabel,
		core.ErrTitleTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleCreateRecord stores one manually entered income or expense. When no
// label is given it is classified from the free text, or the title.
func (s *Server) handleCreateRecord(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRecordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		uid, ok := s.resolveUser(w, r, req.UID)
		if !ok {
			return
		}

		amount, err := core.ParseEntryAmount(amountText(req.Amount))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid amount.")
			return
		}

		date := core.NormalizeDate(req.Date)
		if !date.Resolved() {
			if !req.Date.IsAbsent() && req.Date != core.RawDateString("") {
				writeError(w, http.StatusUnprocessableEntity, "Invalid date.")
				return
			}
			date = core.DateOf(s.now().UTC())
		}

		label := sanitizeInput(req.Category)
		if kind == core.Income {
			label = sanitizeInput(req.Source)
		}
		title := sanitizeInput(req.Title)
		if label == "" {
			text := sanitizeInput(req.Text)
			if text == "" {
				text = title
			}
			label = s.classifier.Classify(text, core.DomainOf(kind))
		}

		rec := core.MoneyRecord{
			UserID:     uid,
			Kind:       kind,
			Amount:     amount,
			OccurredAt: date,
			Label:      label,
			Title:      title,
			CreatedAt:  s.now().UTC(),
		}
		id, err := s.records.Commit(r.Context(), rec)
		if err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Record commit failed",
				log.FieldKind, kind,
				log.FieldError, err)
			writeFailure(w, "Failed to save "+strings.ToLower(string(kind))+".", err)
			return
		}
		rec.ID = id
		writeJSON(w, http.StatusCreated, newRecordJSON(rec))
	}
}

// handleListRecords returns the user's records of one kind, newest first.
func (s *Server) handleListRecords(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := s.resolveUser(w, r, r.URL.Query().Get("uid"))
		if !ok {
			return
		}
		records, err := s.records.List(r.Context(), uid, kind)
		if err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Record list failed",
				log.FieldKind, kind,
				log.FieldError, err)
			writeFailure(w, "Failed to load "+kind.Collection()+".", err)
			return
		}
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].OccurredAt.After(records[j].OccurredAt.Time)
		})

		out := make([]recordJSON, 0, len(records))
		for _, rec := range records {
			out = append(out, newRecordJSON(rec))
		}
		writeJSON(w, http.StatusOK, map[string]any{kind.Collection(): out})
	}
}

// handleCommitTransactions stores the statement transactions the user
// confirmed. Transactions whose classification is not Income or Expense are
// skipped.
func (s *Server) handleCommitTransactions(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	uid, ok := s.resolveUser(w, r, req.UID)
	if !ok {
		return
	}

	valid := req.Transactions[:0]
	for _, tx := range req.Transactions {
		if tx.ClassifiedAs.IsValid() && tx.Amount != 0 {
			valid = append(valid, tx)
		}
	}
	if len(valid) == 0 {
		writeError(w, http.StatusBadRequest, "No transactions to save.")
		return
	}

	saved, err := s.records.CommitMany(r.Context(), s.insights.StatementRecords(valid, uid))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction commit failed",
			log.FieldTransactions, saved,
			log.FieldError, err)
		status := http.StatusInternalServerError
		if isValidationError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]any{
			"error":   "Failed to save transactions.",
			"message": err.Error(),
			"saved":   saved,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": saved})
}
