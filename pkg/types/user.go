package types

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	USER_ROLE_USER  = "user"
	USER_ROLE_ADMIN = "admin"
)

type User struct {
	ID           string `json:"id" db:"id"`
	UUID         string `json:"uuid" db:"uuid"`
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	Email        string `json:"email" db:"email"`
	Role         string `json:"role" db:"role"`
	Password     string `json:"-" db:"password"` // bcrypt hash
	MobileNumber string `json:"mobile_number" db:"mobile_number"`
	Avatar       string `json:"avatar" db:"avatar"`
	UpdatedAt    int64  `json:"updated_at" db:"updated_at"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
}

type ListUserOptions struct {
	Role  string
	Email string
}

func (opts ListUserOptions) Apply(query *sq.SelectBuilder) {
	if opts.Role != "" {
		*query = query.Where(sq.Eq{"role": opts.Role})
	}
	if opts.Email != "" {
		*query = query.Where(sq.Eq{"email": opts.Email})
	}
}
