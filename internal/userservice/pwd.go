package userservice

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func (p *Password) set(pwd string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}

	p.Plain = &pwd
	p.hash = hash

	return nil
}

func (p *Password) compare(pwd string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(pwd))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}

// Scan loads the stored hash so a User can be read straight from a row.
func (p *Password) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		p.hash = append([]byte(nil), v...)
	case string:
		p.hash = []byte(v)
	case nil:
		p.hash = nil
	default:
		return fmt.Errorf("cannot scan %T into password", src)
	}

	return nil
}
