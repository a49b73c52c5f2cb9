package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finlens/internal/cache"
	"finlens/internal/core"
	"finlens/internal/ledger"
	"finlens/internal/metrics"
	"finlens/internal/report"
)

// Dashboard is the month view: the month summary, the year buckets and the
// trailing balance trend.
type Dashboard struct {
	Summary core.Summary
	Buckets [12]core.MonthBucket
	Trend   core.Trend
}

// SummaryService folds a user's records into summaries. Incomes and expenses
// are fetched concurrently; computed views are cached per user and window.
//
// Each user carries a generation that InvalidateUser bumps. A view computed
// across a bump is returned but never cached.
type SummaryService struct {
	store      ledger.RecordLister
	summaries  cache.Cache[core.Summary]
	dashboards cache.Cache[Dashboard]

	mu          sync.Mutex
	generations map[string]uint64
}

// NewSummaryService creates the service. Nil caches disable caching.
func NewSummaryService(store ledger.RecordLister, summaries cache.Cache[core.Summary], dashboards cache.Cache[Dashboard]) *SummaryService {
	return &SummaryService{
		store:       store,
		summaries:   summaries,
		dashboards:  dashboards,
		generations: make(map[string]uint64),
	}
}

// Records fetches incomes and expenses of userID concurrently. The first
// failure cancels the other fetch and is returned.
func (s *SummaryService) Records(ctx context.Context, userID string) ([]core.MoneyRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrEmptyUserID
	}

	var incomes, expenses []core.MoneyRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if incomes, err = s.store.ListRecords(gctx, userID, core.Income); err != nil {
			return fmt.Errorf("fetch incomes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if expenses, err = s.store.ListRecords(gctx, userID, core.Expense); err != nil {
			return fmt.Errorf("fetch expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]core.MoneyRecord, 0, len(incomes)+len(expenses))
	records = append(records, incomes...)
	return append(records, expenses...), nil
}

// PeriodSummary totals the records between the optional inclusive bounds.
func (s *SummaryService) PeriodSummary(ctx context.Context, userID string, from, to *time.Time) (core.Summary, error) {
	key := userKey(userID, "period", boundKey(from), boundKey(to))
	if s.summaries != nil {
		if cached, ok := s.summaries.Get(key); ok {
			metrics.ObserveSummaryCache(true)
			return cached, nil
		}
		metrics.ObserveSummaryCache(false)
	}

	gen := s.generation(userID)
	records, err := s.Records(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	summary := core.PeriodSummary(records, from, to)

	if s.summaries != nil {
		s.storeIfCurrent(userID, gen, func() { s.summaries.Set(key, summary) })
	}
	return summary, nil
}

// Dashboard builds the view of a 0-based month.
func (s *SummaryService) Dashboard(ctx context.Context, userID string, year, month int) (Dashboard, error) {
	if month < 0 || month > 11 {
		return Dashboard{}, fmt.Errorf("invalid month %d: must be between 0 and 11", month)
	}

	key := userKey(userID, "dashboard", fmt.Sprint(year), fmt.Sprint(month))
	if s.dashboards != nil {
		if cached, ok := s.dashboards.Get(key); ok {
			metrics.ObserveSummaryCache(true)
			return cached, nil
		}
		metrics.ObserveSummaryCache(false)
	}

	gen := s.generation(userID)
	records, err := s.Records(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{
		Summary: core.Aggregate(records, core.MonthWindow(year, month)),
		Buckets: core.YearBuckets(records, year),
		Trend:   core.BalanceTrend(records, year, month),
	}

	if s.dashboards != nil {
		s.storeIfCurrent(userID, gen, func() { s.dashboards.Set(key, d) })
	}
	return d, nil
}

// YearBuckets returns the 12 month buckets of year.
func (s *SummaryService) YearBuckets(ctx context.Context, userID string, year int) ([12]core.MonthBucket, error) {
	records, err := s.Records(ctx, userID)
	if err != nil {
		return [12]core.MonthBucket{}, err
	}
	return core.YearBuckets(records, year), nil
}

// MonthlyStatement lists the transactions of a 0-based month, newest first.
func (s *SummaryService) MonthlyStatement(ctx context.Context, userID string, year, month int) (report.MonthlyStatement, error) {
	if month < 0 || month > 11 {
		return report.MonthlyStatement{}, fmt.Errorf("invalid month %d: must be between 0 and 11", month)
	}
	records, err := s.Records(ctx, userID)
	if err != nil {
		return report.MonthlyStatement{}, err
	}
	return report.MonthlyStatement{
		Year:    year,
		Month:   month,
		Entries: core.MonthTransactions(records, year, month),
	}, nil
}

// InvalidateUser drops every cached view of userID. Views still being
// computed from older records are not cached when they finish.
func (s *SummaryService) InvalidateUser(userID string) {
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()

	prefix := userID + "|"
	if s.summaries != nil {
		s.summaries.DeletePrefix(prefix)
	}
	if s.dashboards != nil {
		s.dashboards.DeletePrefix(prefix)
	}
}

func (s *SummaryService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// storeIfCurrent runs set only while userID is still at generation gen. The
// lock is held across set so an invalidation cannot slip in between.
func (s *SummaryService) storeIfCurrent(userID string, gen uint64, set func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userID] != gen {
		return
	}
	set()
}

func userKey(userID string, parts ...string) string {
	return userID + "|" + strings.Join(parts, "|")
}

func boundKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
