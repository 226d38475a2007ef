package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

// PostgresStore implements TxStore on database/sql with SELECT ... FOR UPDATE
// row locks bounded by SET LOCAL lock_timeout.
type PostgresStore struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func NewPostgresStore(db *sql.DB, lockTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, lockTimeout: lockTimeout}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// SET does not accept bind parameters.
	setTimeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
	if _, err := sqlTx.ExecContext(ctx, setTimeout); err != nil {
		sqlTx.Rollback()
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if err := fn(ctx, &postgresTx{tx: sqlTx}); err != nil {
		sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapPgError(err)
	}
	return nil
}

type postgresTx struct {
	tx *sql.Tx
}

const (
	productColumns   = `id, store_id, sku, name, category, description, unit_price, inventory, created_at, updated_at`
	inventoryColumns = `id, store_id, product_id, units`
	orderColumns     = `id, status, inventory_id, created_by, person_id, order_quantity, created_at, updated_at`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.UnitPrice, &p.Inventory, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanInventory(row rowScanner) (models.Inventory, error) {
	var inv models.Inventory
	err := row.Scan(&inv.ID, &inv.StoreID, &inv.ProductID, &inv.Units)
	return inv, err
}

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.Status, &o.InventoryID, &o.CreatedBy, &o.PersonID, &o.Quantity, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// notFound maps sql.ErrNoRows to sentinel and everything else through mapPgError.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return mapPgError(err)
}

func (t *postgresTx) product(ctx context.Context, id int, lock bool) (models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	p, err := scanProduct(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	return p, nil
}

func (t *postgresTx) inventory(ctx context.Context, id int, lock bool) (models.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	inv, err := scanInventory(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Inventory{}, notFound(err, ErrInventoryNotFound)
	}
	return inv, nil
}

func (t *postgresTx) order(ctx context.Context, id int, lock bool) (models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Order{}, notFound(err, ErrOrderNotFound)
	}
	return o, nil
}

func (t *postgresTx) GetProduct(ctx context.Context, id int) (models.Product, error) {
	return t.product(ctx, id, false)
}

func (t *postgresTx) GetInventory(ctx context.Context, id int) (models.Inventory, error) {
	return t.inventory(ctx, id, false)
}

func (t *postgresTx) GetOrder(ctx context.Context, id int) (models.Order, error) {
	return t.order(ctx, id, false)
}

func (t *postgresTx) LockProduct(ctx context.Context, id int) (models.Product, error) {
	return t.product(ctx, id, true)
}

func (t *postgresTx) LockInventory(ctx context.Context, id int) (models.Inventory, error) {
	return t.inventory(ctx, id, true)
}

func (t *postgresTx) LockOrder(ctx context.Context, id int) (models.Order, error) {
	return t.order(ctx, id, true)
}

func (t *postgresTx) FindInventory(ctx context.Context, storeID, productID int) (models.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE store_id = $1 AND product_id = $2`
	inv, err := scanInventory(t.tx.QueryRowContext(ctx, query, storeID, productID))
	if err != nil {
		return models.Inventory{}, notFound(err, ErrInventoryNotFound)
	}
	return inv, nil
}

func (t *postgresTx) SaveStock(ctx context.Context, productID, productInventory, inventoryID, units int) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE products SET inventory = $1, updated_at = now() WHERE id = $2`, productInventory, productID)
	if err != nil {
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}

	res, err = t.tx.ExecContext(ctx, `UPDATE inventories SET units = $1 WHERE id = $2`, units, inventoryID)
	if err != nil {
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInventoryNotFound
	}
	return nil
}

func (t *postgresTx) CreateInventory(ctx context.Context, storeID, productID, units int) (models.Inventory, error) {
	query := `INSERT INTO inventories (store_id, product_id, units) VALUES ($1, $2, $3) RETURNING ` + inventoryColumns
	inv, err := scanInventory(t.tx.QueryRowContext(ctx, query, storeID, productID, units))
	if err != nil {
		return models.Inventory{}, mapPgError(err)
	}
	return inv, nil
}

func (t *postgresTx) LogMovement(ctx context.Context, m models.Movement) (models.Movement, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO movements (product_id, inventory_id, order_id, delta, reason, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := t.tx.QueryRowContext(ctx, query, m.ProductID, m.InventoryID, m.OrderID, m.Delta, m.Reason, m.CreatedAt).Scan(&m.ID); err != nil {
		return models.Movement{}, fmt.Errorf("failed to insert movement: %w", mapPgError(err))
	}
	return m, nil
}

func (t *postgresTx) InsertOrder(ctx context.Context, o models.Order) (models.Order, error) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO orders (status, inventory_id, created_by, person_id, order_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING ` + orderColumns
	created, err := scanOrder(t.tx.QueryRowContext(ctx, query, string(o.Status), o.InventoryID, o.CreatedBy, o.PersonID, o.Quantity, o.CreatedAt))
	if err != nil {
		return models.Order{}, mapPgError(err)
	}
	return created, nil
}

func (t *postgresTx) UpdateOrderLine(ctx context.Context, id, inventoryID, quantity int, at time.Time) (models.Order, error) {
	query := `UPDATE orders SET inventory_id = $1, order_quantity = $2, updated_at = $3 WHERE id = $4 RETURNING ` + orderColumns
	o, err := scanOrder(t.tx.QueryRowContext(ctx, query, inventoryID, quantity, at, id))
	if err != nil {
		return models.Order{}, notFound(err, ErrOrderNotFound)
	}
	return o, nil
}

func (t *postgresTx) SaveOrderStatus(ctx context.Context, id int, status models.OrderStatus, at time.Time) (models.Order, error) {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 RETURNING ` + orderColumns
	o, err := scanOrder(t.tx.QueryRowContext(ctx, query, string(status), at, id))
	if err != nil {
		return models.Order{}, notFound(err, ErrOrderNotFound)
	}
	return o, nil
}

// UpsertPersonByContact relies on the unique contact constraint. The no-op
// DO UPDATE makes RETURNING yield the existing row on conflict.
func (t *postgresTx) UpsertPersonByContact(ctx context.Context, p models.Person) (models.Person, error) {
	query := `
		INSERT INTO persons (name, email, contact, address, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contact) DO UPDATE SET contact = EXCLUDED.contact
		RETURNING id, name, email, contact, address, password_hash
	`
	var out models.Person
	err := t.tx.QueryRowContext(ctx, query, p.Name, p.Email, p.Contact, p.Address, p.PasswordHash).
		Scan(&out.ID, &out.Name, &out.Email, &out.Contact, &out.Address, &out.PasswordHash)
	if err != nil {
		return models.Person{}, mapPgError(err)
	}
	return out, nil
}

func (t *postgresTx) ListStoreProducts(ctx context.Context, storeID int) ([]models.Product, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE store_id = $1 ORDER BY id`, storeID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (t *postgresTx) ListProductOrders(ctx context.Context, productID int) ([]models.Order, error) {
	query := `
		SELECT o.id, o.status, o.inventory_id, o.created_by, o.person_id, o.order_quantity, o.created_at, o.updated_at
		FROM orders o
		JOIN inventories i ON i.id = o.inventory_id
		WHERE i.product_id = $1
		ORDER BY o.id
	`
	rows, err := t.tx.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (t *postgresTx) DeleteProduct(ctx context.Context, id int) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
