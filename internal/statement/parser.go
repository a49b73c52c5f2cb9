package statement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"finlens/internal/llm"
)

// Parser segments statement text into transactions with a text generator.
type Parser struct {
	gen llm.Generator
}

func NewParser(gen llm.Generator) *Parser {
	return &Parser{gen: gen}
}

// Parse asks the generator to classify rawText and keeps only the elements
// of its reply that satisfy the transaction shape. A reply that is not a JSON
// array yields an empty list; only a failed generator call is an error.
func (p *Parser) Parse(ctx context.Context, rawText string) ([]ExtractedTransaction, error) {
	reply, err := p.gen.Generate(ctx, llm.Text(llm.ClassificationPrompt(rawText)))
	if err != nil {
		return nil, fmt.Errorf("classify statement: %w", err)
	}
	return DecodeTransactions(reply), nil
}

// DecodeTransactions strips markdown code fences from a model reply and
// decodes the valid transactions it contains.
func DecodeTransactions(reply string) []ExtractedTransaction {
	cleaned := strings.ReplaceAll(reply, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var elems []any
	if err := json.Unmarshal([]byte(cleaned), &elems); err != nil {
		slog.Debug("Model reply is not a JSON array", "error", err, "length", len(cleaned))
		return []ExtractedTransaction{}
	}

	txs := make([]ExtractedTransaction, 0, len(elems))
	for _, e := range elems {
		if tx, ok := fromShape(e); ok {
			txs = append(txs, tx)
		}
	}
	if dropped := len(elems) - len(txs); dropped > 0 {
		slog.Debug("Dropped malformed transactions", "dropped", dropped, "kept", len(txs))
	}
	return txs
}
