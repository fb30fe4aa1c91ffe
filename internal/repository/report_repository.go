package repository

import (
	"context"

	"github.com/templestreet/forecast-app/internal/domain"
)

// ReportRepository persists run outputs so the API can serve the latest
// reports without re-reading source spreadsheets.
type ReportRepository interface {
	SaveOrderLines(ctx context.Context, runID int64, lines []domain.PurchaseOrderLine) error
	SaveAccuracyRecords(ctx context.Context, runID int64, records []domain.AccuracyRecord) error
	GetOrderLines(ctx context.Context, runID int64) ([]domain.PurchaseOrderLine, error)
	GetAccuracyRecords(ctx context.Context, runID int64) ([]domain.AccuracyRecord, error)
}
