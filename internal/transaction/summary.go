package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// SummaryTTL bounds how stale a cached summary may be.
const SummaryTTL = 30 * time.Second

func summaryKey(userID int64) string {
	return "tx_summary:" + strconv.FormatInt(userID, 10)
}

// Summary returns the user's income/expense totals over all their transactions.
// Results are cached per user for SummaryTTL. A failing store yields a zero
// summary, which is cached like any other result.
func (s *Service) Summary(ctx context.Context, userID int64) (Summary, error) {
	key := summaryKey(userID)

	cached, ok, err := s.summaries.Get(ctx, key)
	if err != nil {
		slog.Warn("summary cache read failed", "user_id", userID, "error", err)
	}

	if ok {
		return cached, nil
	}

	// Callers share one aggregation, so no single caller's cancellation may
	// end it; aggregate still applies the store timeout.
	shared := context.WithoutCancel(ctx)

	v, err, _ := s.inflight.Do(key, func() (any, error) {
		sum, err := s.aggregate(shared, userID)
		if err != nil {
			return Summary{}, err
		}

		if err := s.summaries.Set(shared, key, sum, SummaryTTL); err != nil {
			slog.Warn("summary cache write failed", "user_id", userID, "error", err)
		}

		return sum, nil
	})
	if err != nil {
		return Summary{}, err
	}

	return v.(Summary), nil
}

func (s *Service) aggregate(ctx context.Context, userID int64) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	totals, err := s.repo.SumByType(ctx, userID)
	if err != nil {
		if !Degradable(err) {
			return Summary{}, fmt.Errorf("aggregating transactions: %w", err)
		}

		slog.Warn("summary degraded to zero totals", "user_id", userID, "error", err)

		return newSummary(decimal.Zero, decimal.Zero), nil
	}

	// Missing groups read as zero; unknown type labels are ignored.
	return newSummary(totals[TypeIncome], totals[TypeExpense]), nil
}
