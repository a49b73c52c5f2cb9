package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/core"
)

// ToRecords converts confirmed transactions into records owned by userID.
// Amounts are stored as absolute values, labels come from the classifier's
// statement table, and dates that cannot be parsed fall back to now.
func ToRecords(txs []ExtractedTransaction, userID string, classifier *core.Classifier, now time.Time) []core.MoneyRecord {
	today := core.DateOf(now.UTC())
	records := make([]core.MoneyRecord, 0, len(txs))
	for _, tx := range txs {
		date := core.NormalizeDate(core.RawDateString(tx.Date))
		if !date.Resolved() {
			date = today
		}
		records = append(records, core.MoneyRecord{
			UserID:     userID,
			Kind:       tx.ClassifiedAs,
			Amount:     decimal.NewFromFloat(tx.Amount).Abs(),
			OccurredAt: date,
			Label:      classifier.StatementLabel(tx.Description, tx.ClassifiedAs),
			Title:      strings.TrimSpace(tx.Description),
			CreatedAt:  now,
		})
	}
	return records
}
