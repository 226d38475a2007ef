package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type PostgresMovementRepository struct {
	db *sql.DB
}

func NewPostgresMovementRepository(db *sql.DB) *PostgresMovementRepository {
	return &PostgresMovementRepository{db: db}
}

const maxMovementsPage = 100

// GetByProductID returns the product's movements, newest first. At most
// maxMovementsPage rows come back per call.
func (r *PostgresMovementRepository) GetByProductID(productID int, mf MovementFilter) ([]models.Movement, int, error) {
	where := movementWhere(productID, mf)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	total, err := where.count(ctx, r.db, "movements")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}
	if total == 0 || (mf.Offset != nil && *mf.Offset >= total) {
		return []models.Movement{}, total, nil
	}

	paging, args := where.paged(mf.Offset, mf.Limit, maxMovementsPage)
	query := "SELECT id, product_id, inventory_id, order_id, delta, reason, created_at FROM movements" +
		where.String() + " ORDER BY created_at DESC, id DESC" + paging

	movements, err := r.query(ctx, query, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute query: %w", err)
	}
	return movements, total, nil
}

func movementWhere(productID int, mf MovementFilter) *whereBuilder {
	where := newWhere("product_id = ?", productID)
	if mf.Since != nil {
		where.add("created_at >= ?", *mf.Since)
	}
	if mf.Until != nil {
		where.add("created_at <= ?", *mf.Until)
	}
	if mf.OrderID != nil {
		where.add("order_id = ?", *mf.OrderID)
	}
	if mf.Reason != "" {
		where.add("reason = ?", mf.Reason)
	}
	return where
}

func (r *PostgresMovementRepository) query(ctx context.Context, query string, args []any) ([]models.Movement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []models.Movement{}
	for rows.Next() {
		var m models.Movement
		var orderID sql.NullInt64
		if err := rows.Scan(&m.ID, &m.ProductID, &m.InventoryID, &orderID, &m.Delta, &m.Reason, &m.CreatedAt); err != nil {
			return nil, err
		}
		if orderID.Valid {
			id := int(orderID.Int64)
			m.OrderID = &id
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
