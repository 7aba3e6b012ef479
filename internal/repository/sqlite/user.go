package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO users (id, email, phone, password_hash, role, created) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Phone, u.PasswordHash, string(u.Role), u.Created)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, phone, password_hash, role, created FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByLogin(ctx context.Context, identifier string, role models.Role) (*models.User, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, email, phone, password_hash, role, created FROM users WHERE (email = ? OR (phone != '' AND phone = ?)) AND role = ?`,
		identifier, identifier, string(role))
	return scanUser(row)
}

func (r *SQLiteRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &role, &u.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	u.Role = models.Role(role)

	return &u, nil
}
