package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templestreet/forecast-app/internal/domain"
)

type reportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

// SaveOrderLines persists the purchase-order lines produced by one run.
// Lines are keyed by (run_id, ingredient, unit); re-saving a run replaces
// its lines.
func (r *reportRepository) SaveOrderLines(ctx context.Context, runID int64, lines []domain.PurchaseOrderLine) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE run_id = $1`, runID); err != nil {
			return fmt.Errorf("failed to clear order lines: %w", err)
		}

		query := `
			INSERT INTO order_lines (run_id, ingredient, qty, unit, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, line := range lines {
			if _, err := stmt.ExecContext(ctx, runID, line.Ingredient, line.Qty, line.Unit, now); err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}
		}

		return nil
	})
}

// SaveAccuracyRecords persists the per-key accuracy records of one run.
func (r *reportRepository) SaveAccuracyRecords(ctx context.Context, runID int64, records []domain.AccuracyRecord) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accuracy_records WHERE run_id = $1`, runID); err != nil {
			return fmt.Errorf("failed to clear accuracy records: %w", err)
		}

		query := `
			INSERT INTO accuracy_records (
				run_id, key, forecast_qty, actual_qty,
				difference, percent_error, score, status, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, rec := range records {
			_, err := stmt.ExecContext(
				ctx,
				runID,
				rec.Key,
				rec.ForecastQty,
				rec.ActualQty,
				rec.Difference,
				rec.PercentError,
				rec.Score,
				rec.Status,
				now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert accuracy record: %w", err)
			}
		}

		return nil
	})
}

// GetOrderLines returns the purchase-order lines of one run.
func (r *reportRepository) GetOrderLines(ctx context.Context, runID int64) ([]domain.PurchaseOrderLine, error) {
	query := `
		SELECT ingredient, qty, unit
		FROM order_lines
		WHERE run_id = $1
		ORDER BY ingredient, unit
	`

	var lines []domain.PurchaseOrderLine
	if err := sqlx.SelectContext(ctx, r.db, &lines, query, runID); err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}

	return lines, nil
}

// GetAccuracyRecords returns the accuracy records of one run.
func (r *reportRepository) GetAccuracyRecords(ctx context.Context, runID int64) ([]domain.AccuracyRecord, error) {
	query := `
		SELECT key, forecast_qty, actual_qty, difference, percent_error, score, status
		FROM accuracy_records
		WHERE run_id = $1
		ORDER BY key
	`

	var records []domain.AccuracyRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query, runID); err != nil {
		return nil, fmt.Errorf("failed to get accuracy records: %w", err)
	}

	return records, nil
}
