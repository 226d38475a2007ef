package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

const orderViewSelect = `
	SELECT o.id, o.status, o.inventory_id, o.created_by, o.person_id, o.order_quantity, o.created_at, o.updated_at,
		i.store_id, p.id, p.sku, p.name, p.unit_price,
		pe.name, pe.contact, pe.email, pe.address
	FROM orders o
	JOIN inventories i ON i.id = o.inventory_id
	JOIN products p ON p.id = i.product_id
	JOIN persons pe ON pe.id = o.person_id
`

func scanOrderView(row rowScanner) (models.OrderView, error) {
	var v models.OrderView
	err := row.Scan(&v.ID, &v.Status, &v.InventoryID, &v.CreatedBy, &v.PersonID, &v.Quantity, &v.CreatedAt, &v.UpdatedAt,
		&v.StoreID, &v.ProductID, &v.SKU, &v.ProductName, &v.UnitPrice,
		&v.PersonName, &v.PersonContact, &v.PersonEmail, &v.PersonAddress)
	return v, err
}

func (r *PostgresOrderRepository) GetView(id int) (models.OrderView, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	v, err := scanOrderView(r.db.QueryRowContext(ctx, orderViewSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return models.OrderView{}, notFound(err, ErrOrderNotFound)
	}
	return v, nil
}

const orderListFrom = `orders o
		JOIN inventories i ON i.id = o.inventory_id
		JOIN persons pe ON pe.id = o.person_id`

func (r *PostgresOrderRepository) List(storeID int, of OrderFilter) ([]models.OrderView, int, error) {
	where := newWhere("i.store_id = ?", storeID)
	if of.Status != nil {
		where.add("o.status = ?", string(*of.Status))
	}
	if of.Contact != "" {
		where.add("pe.contact = ?", of.Contact)
	}
	if of.Since != nil {
		where.add("o.created_at >= ?", *of.Since)
	}
	if of.Until != nil {
		where.add("o.created_at <= ?", *of.Until)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	total, err := where.count(ctx, r.db, orderListFrom)
	if err != nil {
		return nil, 0, err
	}

	paging, args := where.paged(of.Offset, of.Limit, 0)
	query := orderViewSelect + where.String() + " ORDER BY o.created_at DESC, o.id DESC" + paging
	views, err := r.query(ctx, query, args...)
	return views, total, err
}

func (r *PostgresOrderRepository) ListBatch(storeID, createdBy, personID int, from, to time.Time) ([]models.OrderView, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	query := orderViewSelect + `
		WHERE i.store_id = $1 AND o.created_by = $2 AND o.person_id = $3
		AND o.created_at BETWEEN $4 AND $5
		ORDER BY o.created_at, o.id`
	return r.query(ctx, query, storeID, createdBy, personID, from, to)
}

func (r *PostgresOrderRepository) query(ctx context.Context, query string, args ...any) ([]models.OrderView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []models.OrderView{}
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
