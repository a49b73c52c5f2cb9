// Package statement turns uploaded bank statements into validated
// transactions and, once the user confirms them, into money records.
package statement

import (
	"finlens/internal/core"
)

const (
	Credit TxType = "Credit"
	Debit  TxType = "Debit"
)

type (
	// TxType is the bank-side direction of a transaction.
	TxType string

	// ExtractedTransaction is one line the model recognised in a statement.
	// It is not persisted until the caller commits it.
	ExtractedTransaction struct {
		Date         string    `json:"date"`
		Description  string    `json:"description"`
		Amount       float64   `json:"amount"`
		Type         TxType    `json:"type"`
		ClassifiedAs core.Kind `json:"classifiedAs"`
	}
)

func (t TxType) IsValid() bool {
	return t == Credit || t == Debit
}

// fromShape converts a decoded JSON element into a transaction. It reports
// false unless every field is present with the expected JSON type and the
// enum fields hold one of their allowed values.
func fromShape(v any) (ExtractedTransaction, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return ExtractedTransaction{}, false
	}

	date, ok := obj["date"].(string)
	if !ok {
		return ExtractedTransaction{}, false
	}
	desc, ok := obj["description"].(string)
	if !ok {
		return ExtractedTransaction{}, false
	}
	amount, ok := obj["amount"].(float64)
	if !ok {
		return ExtractedTransaction{}, false
	}
	typ, ok := obj["type"].(string)
	if !ok || !TxType(typ).IsValid() {
		return ExtractedTransaction{}, false
	}
	kind, ok := obj["classifiedAs"].(string)
	if !ok || !core.Kind(kind).IsValid() {
		return ExtractedTransaction{}, false
	}

	return ExtractedTransaction{
		Date:         date,
		Description:  desc,
		Amount:       amount,
		Type:         TxType(typ),
		ClassifiedAs: core.Kind(kind),
	}, true
}
