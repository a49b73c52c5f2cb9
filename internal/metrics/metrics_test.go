package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestInitIsIdempotentAndExposesInstruments(t *testing.T) {
	Init()
	Init()

	ObserveHTTP("/api/insight", http.MethodPost, 200, 15*time.Millisecond)
	ObserveModelCall("insight", Result(nil), time.Second)
	AddTransactionsExtracted(3)
	IncRecordCommitted("Expense")
	ObserveSummaryCache(true)
	IncEventPublished(ResultError)
	IncSyncProcessed(ResultSuccess)
	IncExport("csv", ResultSuccess)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`finlens_http_requests_total{method="POST",route="/api/insight",status="200"} 1`,
		`finlens_model_calls_total{operation="insight",result="success"} 1`,
		`finlens_statement_transactions_extracted_total 3`,
		`finlens_summary_cache_lookups_total{outcome="hit"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("missing %q in scrape output", want)
		}
	}
}

func TestResult(t *testing.T) {
	if Result(errors.New("x")) != ResultError || Result(nil) != ResultSuccess {
		t.Fatalf("unexpected result mapping")
	}
}
