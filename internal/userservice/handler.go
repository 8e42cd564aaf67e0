package userservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/luanbartole/powerblog/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("unauthorized access")
)

func NewUserService(db *common.DB, c *common.Cache, cost int) *UserService {
	if cost == 0 {
		cost = DefaultCost
	}

	return &UserService{
		m:    NewUserModel(db),
		c:    c,
		cost: cost,
	}
}

// RegisterUser creates a new account. The first account ever created is the
// administrator, every later one is a reader.
func (s *UserService) RegisterUser(ctx context.Context, in RegisterInput) (*User, error) {
	in.normalize()

	v := common.NewValidator()
	validateRegister(v, in)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	// An existing email is rejected before paying for the hash.
	_, err := s.m.getByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	u := User{
		Name:  in.Name,
		Email: in.Email,
	}

	if err := u.Password.set(in.Password, s.cost); err != nil {
		return nil, err
	}

	// Two concurrent first registrations race for the admin index; the loser
	// retries once and becomes a reader.
	for attempt := 0; attempt < 2; attempt++ {
		err = s.m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			hasAdmin, err := s.m.adminExists(ctx, tx)
			if err != nil {
				return err
			}

			u.Role = RoleReader
			if !hasAdmin {
				u.Role = RoleAdmin
			}

			return s.m.insert(ctx, tx, &u)
		})
		if !errors.Is(err, ErrDuplicateAdmin) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	u.Password.Plain = nil

	return &u, nil
}

// AuthenticateUser returns the user owning the email when the password matches.
// An unknown email yields ErrNotFound and a wrong password ErrAuthenticationFailure.
func (s *UserService) AuthenticateUser(ctx context.Context, in LoginInput) (*User, error) {
	in.normalize()

	v := common.NewValidator()
	validateLogin(v, in)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.getByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	ok, err := u.Password.compare(in.Password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrAuthenticationFailure
	}

	return u, nil
}

// GetUserByID returns the user without its password hash.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "user_id")
	if !v.Valid() {
		return nil, ErrNotFound
	}

	key := common.CacheKeyUser(id)
	if s.c != nil {
		if u, ok := common.CacheGet[User](s.c, key); ok {
			return &u, nil
		}
	}

	u, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Password = Password{}

	if s.c != nil {
		s.c.Set(key, *u, userCacheTTL)
	}

	return u, nil
}

func (u *User) IsAnonymous() bool {
	return u == nil || u == &AnonymousUser
}

func (u *User) IsAdmin() bool {
	return !u.IsAnonymous() && u.Role == RoleAdmin
}
