package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id int64) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// ExistsByID reports whether a user with the ID exists
func (r *UserRepository) ExistsByID(id int64) (bool, error) {
	return existsQuery(context.Background(), r.pool,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

// GetByNameAndEmail retrieves a user by name and email
func (r *UserRepository) GetByNameAndEmail(name, email string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE name = $1 AND email = $2`, name, email)
	return scanUser(row)
}

// Create inserts a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO users (name, email) VALUES ($1, $2) RETURNING `+userColumns,
		user.Name, user.Email)
	created, err := scanUser(row)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation {
			if constraint == "users_email_key" {
				return nil, fmt.Errorf("%w: a user with the provided email already exists", domain.ErrDuplicateUser)
			}
			return nil, domain.ErrDuplicateUser
		}
		return nil, err
	}
	return created, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
