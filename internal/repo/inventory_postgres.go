package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type PostgresInventoryRepository struct {
	db *sql.DB
}

func NewPostgresInventoryRepository(db *sql.DB) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{db: db}
}

func (r *PostgresInventoryRepository) GetByID(id int) (models.Inventory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	inv, err := scanInventory(r.db.QueryRowContext(ctx, `SELECT `+inventoryColumns+` FROM inventories WHERE id = $1`, id))
	if err != nil {
		return models.Inventory{}, notFound(err, ErrInventoryNotFound)
	}
	return inv, nil
}

func (r *PostgresInventoryRepository) ListByStore(storeID int) ([]models.InventoryItem, error) {
	query := `
		SELECT i.id, p.id, p.sku, p.name, i.units, p.unit_price
		FROM inventories i
		JOIN products p ON p.id = i.product_id
		WHERE i.store_id = $1
		ORDER BY i.id
	`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(&it.InventoryID, &it.ProductID, &it.SKU, &it.Name, &it.Units, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
