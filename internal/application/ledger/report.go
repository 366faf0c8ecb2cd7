package ledger

import (
	"context"
	"fmt"
)

// ReportUseCase arma el reporte de vencimientos y delega el render al generador PDF.
type ReportUseCase struct {
	svc *Service
	gen ExpiryReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(svc *Service, gen ExpiryReportGenerator) *ReportUseCase {
	return &ReportUseCase{svc: svc, gen: gen}
}

// BuildExpiryReport reúne estadísticas y alertas con un mismo instante de generación.
func (uc *ReportUseCase) BuildExpiryReport(ctx context.Context) (*ExpiryReport, error) {
	now := uc.svc.now()
	stats, err := uc.svc.inventoryStats(ctx, now)
	if err != nil {
		return nil, err
	}
	alerts, err := uc.svc.expiryAlerts(ctx, now)
	if err != nil {
		return nil, err
	}
	return &ExpiryReport{
		GeneratedAt: now,
		HorizonDays: uc.svc.NearExpiryHorizonDays(),
		Stats:       *stats,
		Alerts:      alerts,
	}, nil
}

// ExpiryReportPDF devuelve los bytes del PDF.
func (uc *ReportUseCase) ExpiryReportPDF(ctx context.Context) ([]byte, error) {
	report, err := uc.BuildExpiryReport(ctx)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.gen.GenerateExpiryReport(ctx, *report)
	if err != nil {
		return nil, fmt.Errorf("generar reporte de vencimientos: %w", err)
	}
	return pdf, nil
}
