package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkondratev/auth-server/internal/dbx"
	"github.com/pkondratev/auth-server/internal/model"
)

// uniqueViolation is the SQLSTATE code for unique constraint violations.
const uniqueViolation = "23505"

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, email, hashed_password, first_name, last_name, role, is_super_admin, is_active, created_at, updated_at, deleted_at`

func scanUser(row *sql.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.HashedPassword, &user.FirstName, &user.LastName,
		&user.Role, &user.IsSuperAdmin, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	return user, err
}

// GetByEmail returns the user with the given email, including soft-deleted
// accounts. Account state checks belong to the service layer.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(dbx.FromContext(ctx, r.db).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(dbx.FromContext(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, hashed_password, first_name, last_name, role, is_super_admin, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + userColumns

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	savedUser, err := scanUser(dbx.FromContext(ctx, r.db).QueryRowContext(ctx, query,
		user.ID, user.Email, user.HashedPassword, user.FirstName, user.LastName,
		user.Role, user.IsSuperAdmin, user.IsActive, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		// Two concurrent registrations can both pass the service's email
		// pre-check; the unique index is the arbiter.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE users SET hashed_password = $2, updated_at = NOW() WHERE id = $1`

	result, err := dbx.FromContext(ctx, r.db).ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("failed to set user password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set user password: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}

	return nil
}
