package statement

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/core"
	"finlens/internal/llm"
)

func replyWith(reply string, err error) llm.Generator {
	return llm.GeneratorFunc(func(_ context.Context, in llm.Input) (string, error) {
		return reply, err
	})
}

func TestParseKeepsOnlyValidShapes(t *testing.T) {
	reply := "```json\n[" +
		`{"date":"2024-03-01","description":"SALARY ACME","amount":50000,"type":"Credit","classifiedAs":"Income"},` +
		`{"date":"2024-03-02","description":"SWIGGY","amount":"250","type":"Debit","classifiedAs":"Expense"},` +
		`{"date":"2024-03-03","description":"ATM","amount":2000,"type":"Withdrawal","classifiedAs":"Expense"},` +
		`{"date":"2024-03-04","description":"RENT","amount":12000,"type":"Debit","classifiedAs":"Expense"},` +
		`"not an object"` +
		"]\n```"

	p := NewParser(replyWith(reply, nil))
	txs, err := p.Parse(context.Background(), "raw statement text")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, ExtractedTransaction{
		Date:         "2024-03-01",
		Description:  "SALARY ACME",
		Amount:       50000,
		Type:         Credit,
		ClassifiedAs: core.Income,
	}, txs[0])
	assert.Equal(t, "RENT", txs[1].Description)
	assert.Equal(t, Debit, txs[1].Type)
}

func TestParseNonArrayReplyIsEmpty(t *testing.T) {
	for _, reply := range []string{"Sorry, I cannot help.", `{"date":"2024-01-01"}`, "```json\n```"} {
		txs, err := NewParser(replyWith(reply, nil)).Parse(context.Background(), "x")
		require.NoError(t, err)
		assert.NotNil(t, txs)
		assert.Empty(t, txs, "reply %q", reply)
	}
}

func TestParseGeneratorFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := NewParser(replyWith("", boom)).Parse(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestParseSendsClassificationPrompt(t *testing.T) {
	var prompt string
	gen := llm.GeneratorFunc(func(_ context.Context, in llm.Input) (string, error) {
		prompt = in.Prompt
		assert.False(t, in.HasData())
		return "[]", nil
	})
	_, err := NewParser(gen).Parse(context.Background(), "01/03 UBER 300")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(prompt, `"""01/03 UBER 300"""`))
}
