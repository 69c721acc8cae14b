package postgres

import (
	"context"
	"database/sql"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
)

// PricingRepository is a PostgreSQL implementation of repository.PricingRepository.
// The configuration lives in two tables: pricing_settings (single row, VAT rate)
// and pricing_rates (one row per price level and vehicle type).
type PricingRepository struct {
	db *sql.DB
}

// NewPricingRepository creates a new PostgreSQL pricing repository.
func NewPricingRepository(db *sql.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// Get loads the full pricing configuration, levels in configured order.
func (r *PricingRepository) Get(ctx context.Context) (*domain.PricingConfiguration, error) {
	cfg := &domain.PricingConfiguration{}

	err := r.db.QueryRowContext(ctx, `SELECT vat_rate FROM pricing_settings LIMIT 1`).Scan(&cfg.VATRate)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT price_level, position, vehicle_type, hourly_rate, weekly_price, monthly_price, yearly_price
		FROM pricing_rates
		ORDER BY position, vehicle_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levelIndex := make(map[string]int)
	for rows.Next() {
		var level string
		var position int
		var vehicleType domain.VehicleType
		var rates domain.VehicleRates

		if err := rows.Scan(&level, &position, &vehicleType,
			&rates.HourlyRate, &rates.WeeklyPrice, &rates.MonthlyPrice, &rates.YearlyPrice); err != nil {
			return nil, err
		}

		idx, ok := levelIndex[level]
		if !ok {
			idx = len(cfg.Levels)
			levelIndex[level] = idx
			cfg.Levels = append(cfg.Levels, domain.PriceLevel{
				Name:  level,
				Rates: make(map[domain.VehicleType]domain.VehicleRates),
			})
		}
		cfg.Levels[idx].Rates[vehicleType] = rates
	}

	return cfg, rows.Err()
}

// Save replaces the pricing configuration atomically.
func (r *PricingRepository) Save(ctx context.Context, cfg *domain.PricingConfiguration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM pricing_settings`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO pricing_settings (vat_rate) VALUES ($1)`, cfg.VATRate); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM pricing_rates`); err != nil {
		return err
	}

	for position, level := range cfg.Levels {
		for vehicleType, rates := range level.Rates {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO pricing_rates
					(price_level, position, vehicle_type, hourly_rate, weekly_price, monthly_price, yearly_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, level.Name, position, vehicleType,
				rates.HourlyRate, rates.WeeklyPrice, rates.MonthlyPrice, rates.YearlyPrice)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Ensure PricingRepository implements repository.PricingRepository.
var _ repository.PricingRepository = (*PricingRepository)(nil)
