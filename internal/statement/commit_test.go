package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/core"
)

func TestToRecords(t *testing.T) {
	now := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	txs := []ExtractedTransaction{
		{Date: "2024-03-01", Description: "SALARY ACME", Amount: 50000, Type: Credit, ClassifiedAs: core.Income},
		{Date: "2024-03-02", Description: "Swiggy order", Amount: -250.5, Type: Debit, ClassifiedAs: core.Expense},
		{Date: "yesterday", Description: "POS 1234", Amount: 99, Type: Debit, ClassifiedAs: core.Expense},
	}

	recs := ToRecords(txs, "u1", core.NewClassifier(core.DefaultRuleBook()), now)
	require.Len(t, recs, 3)

	assert.Equal(t, "Salary", recs[0].Label)
	assert.Equal(t, core.NewDate(2024, 3, 1), recs[0].OccurredAt)

	assert.Equal(t, "Food", recs[1].Label)
	assert.True(t, recs[1].Amount.Equal(decimal.RequireFromString("250.5")))

	assert.Equal(t, "Misc", recs[2].Label)
	assert.Equal(t, core.NewDate(2024, 5, 20), recs[2].OccurredAt)

	for _, r := range recs {
		assert.Equal(t, "u1", r.UserID)
		assert.NoError(t, r.Validate())
	}
}
