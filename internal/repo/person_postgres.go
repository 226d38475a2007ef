package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/models"
)

type PostgresPersonRepository struct {
	db *sql.DB
}

func NewPostgresPersonRepository(db *sql.DB) *PostgresPersonRepository {
	return &PostgresPersonRepository{db: db}
}

const personColumns = `pe.id, pe.name, pe.email, pe.contact, pe.address, pe.password_hash`

func scanPerson(row rowScanner) (models.Person, error) {
	var p models.Person
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Contact, &p.Address, &p.PasswordHash)
	return p, err
}

func (r *PostgresPersonRepository) ListCustomers(storeID int, pf PersonFilter) ([]models.Person, int, error) {
	where := newWhere(`EXISTS (
		SELECT 1 FROM orders o JOIN inventories i ON i.id = o.inventory_id
		WHERE o.person_id = pe.id AND i.store_id = ?)`, storeID)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	total, err := where.count(ctx, r.db, "persons pe")
	if err != nil {
		return nil, 0, err
	}

	paging, args := where.paged(pf.Offset, pf.Limit, 0)
	rows, err := r.db.QueryContext(ctx, `SELECT `+personColumns+` FROM persons pe`+where.String()+` ORDER BY pe.id`+paging, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, p)
	}
	return customers, total, rows.Err()
}

// Create inserts person unless its email is taken. A taken contact surfaces
// through the unique constraint.
func (r *PostgresPersonRepository) Create(person models.Person) (models.Person, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO persons (name, email, contact, address, password_hash)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM persons WHERE email = $2)
		RETURNING id`,
		person.Name, person.Email, person.Contact, person.Address, person.PasswordHash).Scan(&person.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Person{}, fmt.Errorf("email %s: %w", person.Email, ErrDuplicatedValueUnique)
	}
	if err != nil {
		return models.Person{}, mapPgError(err)
	}
	return person, nil
}

func (r *PostgresPersonRepository) GetByContact(contact string) (models.Person, error) {
	return r.getOne(`SELECT `+personColumns+` FROM persons pe WHERE pe.contact = $1`, contact)
}

func (r *PostgresPersonRepository) GetByEmail(email string) (models.Person, error) {
	return r.getOne(`SELECT `+personColumns+` FROM persons pe WHERE pe.email = $1 ORDER BY pe.id LIMIT 1`, email)
}

func (r *PostgresPersonRepository) UpdateByContact(contact string, upd PersonUpdate) (models.Person, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Person{}, err
	}
	defer tx.Rollback()

	current, err := scanPerson(tx.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons pe WHERE pe.contact = $1 FOR UPDATE`, contact))
	if err != nil {
		return models.Person{}, notFound(err, ErrPersonNotFound)
	}

	updated := upd.apply(current)
	if updated.Email != current.Email {
		var taken bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM persons WHERE email = $1 AND id <> $2)`, updated.Email, current.ID).Scan(&taken)
		if err != nil {
			return models.Person{}, err
		}
		if taken {
			return models.Person{}, fmt.Errorf("email %s: %w", updated.Email, ErrDuplicatedValueUnique)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE persons SET name = $1, email = $2, contact = $3, address = $4 WHERE id = $5`,
		updated.Name, updated.Email, updated.Contact, updated.Address, updated.ID)
	if err != nil {
		return models.Person{}, mapPgError(err)
	}
	return updated, tx.Commit()
}

func (r *PostgresPersonRepository) getOne(query string, arg any) (models.Person, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	p, err := scanPerson(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return models.Person{}, notFound(err, ErrPersonNotFound)
	}
	return p, nil
}
