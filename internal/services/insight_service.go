package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
	"finlens/internal/llm"
	"finlens/internal/log"
	"finlens/internal/metrics"
	"finlens/internal/statement"
)

// ExtractionSource tags amounts read from an inline document.
const ExtractionSource = "gemini-inline-pdf"

// Model operation names, used as metric and log labels.
const (
	opExtractAmount  = "extract_amount"
	opFreeform       = "freeform"
	opStatsInsights  = "stats_insights"
	opMonthlyInsight = "monthly_insight"
	opParseStatement = "parse_statement"
)

var (
	ErrNoGenerator = errors.New("text generation is not configured")
	ErrEmptyText   = errors.New("empty text")
)

// AmountResult is the outcome of reading a payable figure from a document.
// Found is false when the model answered NONE or nothing numeric.
type AmountResult struct {
	Amount   decimal.Decimal
	Found    bool
	RawText  string
	Source   string
	Category string
}

// InsightService runs every model-backed operation: amount extraction,
// statement parsing and the insight prompts.
type InsightService struct {
	gen        llm.Generator
	classifier *core.Classifier
	parser     *statement.Parser
	extractor  *statement.TextExtractor
	summaries  *SummaryService
	currency   string
	logger     *log.StructuredLogger
}

type InsightConfig struct {
	Generator  llm.Generator
	Classifier *core.Classifier
	Extractor  *statement.TextExtractor
	Summaries  *SummaryService
	Currency   string
	Logger     *log.Logger
}

func NewInsightService(cfg InsightConfig) *InsightService {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = core.NewClassifier(core.DefaultRuleBook())
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = statement.NewTextExtractor()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &InsightService{
		gen:        cfg.Generator,
		classifier: classifier,
		extractor:  extractor,
		summaries:  cfg.Summaries,
		currency:   cfg.Currency,
		logger:     log.NewStructuredLogger(logger),
	}
	if cfg.Generator != nil {
		s.parser = statement.NewParser(cfg.Generator)
	}
	return s
}

// Enabled reports whether a generator is configured.
func (s *InsightService) Enabled() bool {
	return s.gen != nil
}

// ExtractAmount asks the model for the payable amount of an inline document
// and classifies the reply text into a label of kind's domain.
func (s *InsightService) ExtractAmount(ctx context.Context, data []byte, mimeType string, kind core.Kind) (AmountResult, error) {
	raw, err := s.generate(ctx, opExtractAmount, llm.Inline(data, mimeType, llm.ExtractionPrompt))
	if err != nil {
		return AmountResult{}, err
	}

	if !kind.IsValid() {
		kind = core.Expense
	}
	amount, ok := core.ExtractPayableAmount(raw)
	return AmountResult{
		Amount:   amount,
		Found:    ok,
		RawText:  raw,
		Source:   ExtractionSource,
		Category: s.classifier.Classify(raw, core.DomainOf(kind)),
	}, nil
}

// FreeformInsight forwards the user's text as the prompt.
func (s *InsightService) FreeformInsight(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return s.generate(ctx, opFreeform, llm.Text(text))
}

// StatsInsights asks for a health summary of the given totals.
func (s *InsightService) StatsInsights(ctx context.Context, stats llm.Stats) (string, error) {
	return s.generate(ctx, opStatsInsights, llm.Text(llm.StatsInsightsPrompt(stats, s.currency)))
}

// MonthlyInsight summarizes a 0-based month of the user's records as at most
// three bullet points.
func (s *InsightService) MonthlyInsight(ctx context.Context, userID string, year, month int) ([]string, error) {
	if s.summaries == nil {
		return nil, errors.New("summary service is not configured")
	}
	d, err := s.summaries.Dashboard(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	prompt := llm.MonthlyInsightPrompt(time.Month(month+1).String(), year, d.Trend.Income, d.Trend.Expense, s.currency)
	reply, err := s.generate(ctx, opMonthlyInsight, llm.Text(prompt))
	if err != nil {
		return nil, err
	}
	return llm.ParseBulletPoints(reply), nil
}

// ExtractStatement reads the text of an uploaded statement and segments it
// into transactions.
func (s *InsightService) ExtractStatement(ctx context.Context, filename string, data []byte) ([]statement.ExtractedTransaction, error) {
	if s.parser == nil {
		return nil, ErrNoGenerator
	}

	text, err := s.extractor.ExtractText(ctx, filename, data)
	if err != nil {
		if !errors.Is(err, statement.ErrEmptyDocument) && !errors.Is(err, statement.ErrUnsupportedFileType) {
			fields := log.NewFields()
			fields[log.FieldFilename] = filename
			s.logger.LogError(ctx, "Statement text extraction failed", err, log.ComponentStatement, log.OpExtract, fields)
		}
		return nil, err
	}

	start := time.Now()
	txs, err := s.parser.Parse(ctx, text)
	s.observe(ctx, opParseStatement, start, err, len(txs) == 0)
	if err != nil {
		return nil, err
	}
	metrics.AddTransactionsExtracted(len(txs))
	return txs, nil
}

// StatementRecords converts extracted transactions into records of userID.
func (s *InsightService) StatementRecords(txs []statement.ExtractedTransaction, userID string) []core.MoneyRecord {
	return statement.ToRecords(txs, userID, s.classifier, time.Now().UTC())
}

func (s *InsightService) generate(ctx context.Context, op string, in llm.Input) (string, error) {
	if s.gen == nil {
		return "", ErrNoGenerator
	}
	start := time.Now()
	out, err := s.gen.Generate(ctx, in)
	s.observe(ctx, op, start, err, false)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *InsightService) observe(ctx context.Context, op string, start time.Time, err error, empty bool) {
	d := time.Since(start)
	result := metrics.Result(err)
	if err == nil && empty {
		result = metrics.ResultEmpty
	}
	metrics.ObserveModelCall(op, result, d)
	s.logger.LogModelCall(ctx, op, d.Milliseconds(), err)
}
