package userservice

import (
	"time"

	"github.com/luanbartole/powerblog/internal/common"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader"

	DefaultCost = 12

	userCacheTTL = 15 * time.Minute
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m    *UserModel
	c    *common.Cache
	cost int
}

type UserModel struct {
	db *common.DB
}

type User struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  Password  `db:"password"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

type Password struct {
	Plain *string
	hash  []byte
}

type RegisterInput struct {
	Name     string `form:"name" validate:"required,max=250"`
	Email    string `form:"email" validate:"required,email,max=250"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}
