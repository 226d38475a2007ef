package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type PostgresMetricsRepository struct {
	db *sql.DB
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) GetDashboardMetrics(storeID int) (Metrics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	m := Metrics{OrdersByStatus: map[string]int{}, ShippedRevenue: decimal.Zero}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE store_id = $1`, storeID).Scan(&m.TotalProducts); err != nil {
		return m, err
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.store_id = $1 AND p.inventory < s.low_stock_threshold
	`, storeID).Scan(&m.LowStockCount)
	if err != nil {
		return m, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.status, COUNT(*)
		FROM orders o
		JOIN inventories i ON i.id = o.inventory_id
		WHERE i.store_id = $1
		GROUP BY o.status
	`, storeID)
	if err != nil {
		return m, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return m, err
		}
		m.OrdersByStatus[status] = count
	}
	rows.Close()

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(p.unit_price * o.order_quantity), 0)
		FROM orders o
		JOIN inventories i ON i.id = o.inventory_id
		JOIN products p ON p.id = i.product_id
		WHERE i.store_id = $1 AND o.status = 'shipped'
	`, storeID).Scan(&m.ShippedRevenue)
	if err != nil {
		return m, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT p.name, SUM(o.order_quantity) AS units
		FROM orders o
		JOIN inventories i ON i.id = o.inventory_id
		JOIN products p ON p.id = i.product_id
		WHERE i.store_id = $1 AND o.status IN ('confirmed', 'shipped')
		GROUP BY p.name
		ORDER BY units DESC, p.name
		LIMIT 1
	`, storeID).Scan(&m.MostOrderedProduct.Name, &m.MostOrderedProduct.OrderedUnits)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return m, err
	}

	return m, nil
}
