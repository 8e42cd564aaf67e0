package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testForm struct {
	Name     string `form:"name" validate:"required,max=10"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
	Website  string `form:"website" validate:"omitempty,url"`
}

func TestValidator_CheckStruct(t *testing.T) {
	tests := []struct {
		name   string
		form   testForm
		errors map[string]string
	}{
		{
			name:   "valid form",
			form:   testForm{Name: "Ada", Email: "ada@example.com", Password: "password1"},
			errors: map[string]string{},
		},
		{
			name: "missing fields",
			form: testForm{},
			errors: map[string]string{
				"name":     "must be provided",
				"email":    "must be provided",
				"password": "must be provided",
			},
		},
		{
			name: "invalid values",
			form: testForm{Name: "Ada Lovelace The First", Email: "ada", Password: "short", Website: "not a url"},
			errors: map[string]string{
				"name":     "must not be more than 10 characters long",
				"email":    "must be a valid email address",
				"password": "must be at least 8 characters long",
				"website":  "must be a valid URL",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			v.CheckStruct(tt.form)

			assert.Equal(t, tt.errors, v.Errors)
			assert.Equal(t, len(tt.errors) == 0, v.Valid())
		})
	}
}

func TestValidator_AddErrorKeepsFirstMessage(t *testing.T) {
	v := NewValidator()
	v.AddError("email", "first")
	v.Check(false, "email", "second")

	assert.Equal(t, "first", v.Errors["email"])

	var verr ValidationError
	assert.ErrorAs(t, v.ValidationError(), &verr)
	assert.Equal(t, v.Errors, verr.Errors)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("ada@example.com"))
	assert.False(t, IsEmail("ada"))
	assert.False(t, IsEmail(""))
}
