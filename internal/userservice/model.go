package userservice

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/luanbartole/powerblog/internal/common"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrDuplicateAdmin = errors.New("duplicate admin")
	ErrNotFound       = errors.New("user not found")
)

var userColumns = []string{"id", "name", "email", "password", "role", "created_at"}

func NewUserModel(db *common.DB) *UserModel {
	return &UserModel{db: db}
}

func (m *UserModel) insert(ctx context.Context, tx *sqlx.Tx, u *User) error {
	query, args, err := m.db.Builder().
		Insert("users").
		Columns("name", "email", "password", "role").
		Values(u.Name, u.Email, u.Password.hash, u.Role).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	err = tx.QueryRowxContext(ctx, query, args...).Scan(&u.ID)
	if err != nil {
		switch {
		case common.IsUniqueViolation(err, "users", "email"):
			return ErrDuplicateEmail
		case common.IsUniqueViolation(err, "users", "role"):
			return ErrDuplicateAdmin
		default:
			return err
		}
	}

	return nil
}

func (m *UserModel) adminExists(ctx context.Context, tx *sqlx.Tx) (bool, error) {
	query, args, err := m.db.Builder().
		Select("COUNT(*)").
		From("users").
		Where(sq.Eq{"role": RoleAdmin}).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := tx.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}

	return count > 0, nil
}

func (m *UserModel) getByEmail(ctx context.Context, email string) (*User, error) {
	return m.getBy(ctx, sq.Eq{"email": email})
}

func (m *UserModel) getByID(ctx context.Context, id int) (*User, error) {
	return m.getBy(ctx, sq.Eq{"id": id})
}

func (m *UserModel) getBy(ctx context.Context, pred sq.Eq) (*User, error) {
	query, args, err := m.db.Builder().
		Select(userColumns...).
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u User
	err = m.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}
