package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type PostgresStoreRepository struct {
	db *sql.DB
}

func NewPostgresStoreRepository(db *sql.DB) *PostgresStoreRepository {
	return &PostgresStoreRepository{db: db}
}

const storeColumns = `id, name, address, low_stock_threshold, sales_lookback_days, reorder_horizon_days, currency`

func scanStore(row rowScanner) (models.Store, error) {
	var s models.Store
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.LowStockThreshold, &s.SalesLookbackDays, &s.ReorderHorizonDays, &s.Currency)
	return s, err
}

func (r *PostgresStoreRepository) GetByID(id int) (models.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := scanStore(r.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id))
	if err != nil {
		return models.Store{}, notFound(err, ErrStoreNotFound)
	}
	return s, nil
}

func (r *PostgresStoreRepository) UpdateSettings(store models.Store) (models.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := scanStore(r.db.QueryRowContext(ctx,
		`UPDATE stores
		SET name = $1, address = $2, low_stock_threshold = $3, sales_lookback_days = $4, reorder_horizon_days = $5, currency = $6
		WHERE id = $7
		RETURNING `+storeColumns,
		store.Name, store.Address, store.LowStockThreshold, store.SalesLookbackDays, store.ReorderHorizonDays, store.Currency, store.ID))
	if err != nil {
		return models.Store{}, notFound(err, ErrStoreNotFound)
	}
	return s, nil
}
