package userservice

import (
	"strings"

	"github.com/luanbartole/powerblog/internal/common"
)

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

func (in *LoginInput) normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

func validateRegister(v *common.Validator, in RegisterInput) {
	v.CheckStruct(in)
}

func validateLogin(v *common.Validator, in LoginInput) {
	v.CheckStruct(in)
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
