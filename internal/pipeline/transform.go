package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/population-dashboard/internal/domain"
	"github.com/couchcryptid/population-dashboard/internal/observability"
)

// RecordTransformer implements Transformer with the domain normalizer and
// records drop counts.
type RecordTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a RecordTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *RecordTransformer {
	return &RecordTransformer{logger: logger, metrics: metrics}
}

func (t *RecordTransformer) Transform(raws []domain.RawRecord) ([]domain.Observation, domain.NormalizeReport) {
	obs, report := domain.Normalize(raws)

	t.metrics.RowsRead.Add(float64(report.Read))
	t.metrics.RowsDropped.WithLabelValues("sex").Add(float64(report.DroppedSex))
	t.metrics.RowsDropped.WithLabelValues("year").Add(float64(report.DroppedYear))
	t.metrics.RowsDropped.WithLabelValues("value").Add(float64(report.DroppedValue))

	t.logger.Info("records normalized",
		"read", report.Read,
		"kept", report.Kept,
		"dropped_sex", report.DroppedSex,
		"dropped_year", report.DroppedYear,
		"dropped_value", report.DroppedValue,
	)
	return obs, report
}
