package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

// ReportMetrics receives the result of each pipeline run
type ReportMetrics interface {
	ReportGenerated(duration time.Duration, coins int, err error)
}

// ReportService runs the snapshot, aggregation and valuation pipeline
type ReportService struct {
	snapshots  *SnapshotService
	valuations *ValuationService
	metrics    ReportMetrics
	logger     *zap.Logger
}

// NewReportService creates a new report service. metrics may be nil.
func NewReportService(
	snapshots *SnapshotService,
	valuations *ValuationService,
	metrics ReportMetrics,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		snapshots:  snapshots,
		valuations: valuations,
		metrics:    metrics,
		logger:     logger,
	}
}

// Generate builds the fumbled gains report for address. Errors are
// ErrInvalidAddress or ErrUpstreamUnavailable, wrapped.
func (s *ReportService) Generate(ctx context.Context, address string) ([]entities.ValuationRecord, error) {
	start := time.Now()

	snapshot, err := s.snapshots.Fetch(ctx, address)
	if err != nil {
		s.record(start, 0, err)
		return nil, err
	}

	coins := Aggregate(snapshot)
	records := s.valuations.Value(ctx, coins)

	s.record(start, len(records), nil)

	s.logger.Info("Generated report",
		zap.String("address", snapshot.Address),
		zap.Int("token_balances", len(snapshot.TokenBalances)),
		zap.Int("transactions", len(snapshot.RecentTxs)),
		zap.Int("coins", len(records)),
		zap.Duration("duration", time.Since(start)),
	)

	return records, nil
}

func (s *ReportService) record(start time.Time, coins int, err error) {
	if s.metrics != nil {
		s.metrics.ReportGenerated(time.Since(start), coins, err)
	}
}
