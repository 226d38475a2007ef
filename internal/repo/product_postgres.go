package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// Create inserts the product, its inventory row and the initial movement in one transaction.
func (r *PostgresProductRepository) Create(p models.Product) (models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, err
	}
	defer tx.Rollback()

	query := `INSERT INTO products (store_id, sku, name, category, description, unit_price, inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now()) RETURNING ` + productColumns
	created, err := scanProduct(tx.QueryRowContext(ctx, query, p.StoreID, p.SKU, p.Name, p.Category, p.Description, p.UnitPrice, p.Inventory))
	if err != nil {
		return models.Product{}, mapPgError(err)
	}

	var inventoryID int
	err = tx.QueryRowContext(ctx, `INSERT INTO inventories (store_id, product_id, units) VALUES ($1, $2, $3) RETURNING id`,
		created.StoreID, created.ID, created.Inventory).Scan(&inventoryID)
	if err != nil {
		return models.Product{}, mapPgError(err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO movements (product_id, inventory_id, delta, reason, created_at) VALUES ($1, $2, $3, $4, $5)`,
		created.ID, inventoryID, created.Inventory, models.MovementInitial, created.CreatedAt)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert movement: %w", err)
	}

	return created, tx.Commit()
}

func (r *PostgresProductRepository) GetByID(id int) (models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	return p, nil
}

func (r *PostgresProductRepository) GetBySKU(storeID int, sku string) (models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND sku = $2`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, storeID, sku))
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	return p, nil
}

func (r *PostgresProductRepository) UpdateDetails(p models.Product) (models.Product, error) {
	query := `UPDATE products SET name = $1, category = $2, description = $3, unit_price = $4, updated_at = now()
		WHERE id = $5 RETURNING ` + productColumns
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	updated, err := scanProduct(r.db.QueryRowContext(ctx, query, p.Name, p.Category, p.Description, p.UnitPrice, p.ID))
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	return updated, nil
}

func (r *PostgresProductRepository) Filter(storeID int, pf ProductFilter) ([]models.Product, int, error) {
	where := newWhere("store_id = ?", storeID)
	if pf.Name != "" {
		where.add("name ILIKE ?", "%"+pf.Name+"%")
	}
	if pf.Category != "" {
		where.add("lower(category) = lower(?)", pf.Category)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	totalCount, err := where.count(ctx, r.db, "products")
	if err != nil {
		return nil, 0, err
	}

	paging, args := where.paged(pf.Offset, pf.Limit, 0)
	query := `SELECT ` + productColumns + ` FROM products` + where.String() + " ORDER BY id" + paging

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}

	return products, totalCount, rows.Err()
}
