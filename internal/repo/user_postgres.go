package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, person_id, store_id, username, password_hash, role, active, created_at, updated_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.PersonID, &u.StoreID, &u.Username, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *PostgresUserRepository) GetByUsername(username string) (models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByID(id int) (models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (r *PostgresUserRepository) RegisterStore(store models.Store, person models.Person, user models.User) (models.Store, models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Store{}, models.User{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO stores (name, address, low_stock_threshold, sales_lookback_days, reorder_horizon_days, currency)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		store.Name, store.Address, store.LowStockThreshold, store.SalesLookbackDays, store.ReorderHorizonDays, store.Currency).Scan(&store.ID)
	if err != nil {
		return models.Store{}, models.User{}, mapPgError(err)
	}

	user.StoreID = store.ID
	created, err := insertUser(ctx, tx, person, user)
	if err != nil {
		return models.Store{}, models.User{}, err
	}
	return store, created, tx.Commit()
}

func (r *PostgresUserRepository) CreateUser(person models.Person, user models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	created, err := insertUser(ctx, tx, person, user)
	if err != nil {
		return models.User{}, err
	}
	return created, tx.Commit()
}

func insertUser(ctx context.Context, tx *sql.Tx, person models.Person, user models.User) (models.User, error) {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO persons (name, email, contact, address, password_hash) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		person.Name, person.Email, person.Contact, person.Address, person.PasswordHash).Scan(&user.PersonID)
	if err != nil {
		return models.User{}, mapPgError(err)
	}

	query := `INSERT INTO users (person_id, store_id, username, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now()) RETURNING ` + userColumns
	created, err := scanUser(tx.QueryRowContext(ctx, query, user.PersonID, user.StoreID, user.Username, user.PasswordHash, user.Role, user.Active))
	if err != nil {
		return models.User{}, mapPgError(err)
	}
	return created, nil
}
