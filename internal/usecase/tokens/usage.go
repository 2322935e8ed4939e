package tokens

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/askdex/internal/domain/usage"
	"github.com/kailas-cloud/askdex/internal/domain/usage/budget"
	"github.com/kailas-cloud/askdex/internal/domain/usage/metrics"
)

// BudgetReader provides read-only access to token budget state.
type BudgetReader interface {
	DailyLimit() int64
	MonthlyLimit() int64
	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
}

// UsageService builds token usage reports from budget state.
type UsageService struct {
	br             BudgetReader
	costPerMillion float64
}

// NewUsageService creates a UsageService. br can be nil (unlimited mode).
func NewUsageService(br BudgetReader) *UsageService {
	return &UsageService{br: br}
}

// WithCostPerMillionTokens sets the dollars-per-million-tokens rate used to
// estimate period cost. Zero disables the estimate.
func (s *UsageService) WithCostPerMillionTokens(rate float64) *UsageService {
	if rate > 0 {
		s.costPerMillion = rate
	}
	return s
}

// GetReport builds a usage report for the given period.
func (s *UsageService) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	var start, end int64
	var limit, used, remaining int64

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.Add(24 * time.Hour)
		start = dayStart.UnixMilli()
		end = dayEnd.UnixMilli()
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			remaining = s.br.RemainingDaily()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0)
		start = monthStart.UnixMilli()
		end = monthEnd.UnixMilli()
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	default:
		// total — no period boundaries
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	}

	exhausted := limit > 0 && remaining <= 0
	resetsAt := end

	// tokens × $/1M tokens → millidollars
	cost := int(float64(used) * s.costPerMillion / 1000)

	b := budget.New(int(limit), int(remaining), exhausted, resetsAt)
	m := metrics.New(0, int(used), cost) // per-period request counts not tracked yet

	return domusage.NewReport(period, start, end, m, b)
}
