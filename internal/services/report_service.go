package services

import (
	"context"

	"github.com/google/uuid"

	"finca/internal/core"
	"finca/internal/report"
)

// ReportService produces the formatted period reports farmers read back.
type ReportService struct {
	engine *report.Engine
}

func NewReportService(engine *report.Engine) *ReportService {
	return &ReportService{engine: engine}
}

// BuildReport resolves the period label against ref, sums the farm's
// transactions over that range, and renders the report text.
func (s *ReportService) BuildReport(ctx context.Context, periodLabel string, farmID uuid.UUID, ref core.Date) (string, error) {
	period, err := report.ParsePeriod(periodLabel)
	if err != nil {
		return "", err
	}

	dr := period.Range(ref)
	totals, err := s.engine.SumByType(ctx, farmID, dr)
	if err != nil {
		return "", err
	}

	return report.Format(period, dr, totals), nil
}
